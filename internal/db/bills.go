package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/errors"
)

const dateLayout = "2006-01-02"

// BillFilter narrows ListBills and StreamBills. Zero fields match everything.
type BillFilter struct {
	Congress   int
	Status     bill.Status
	PolicyArea string
}

func (f BillFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Congress > 0 {
		clauses = append(clauses, "congress = ?")
		args = append(args, f.Congress)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.PolicyArea != "" {
		clauses = append(clauses, "policy_area = ? COLLATE NOCASE")
		args = append(args, f.PolicyArea)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpsertBill writes a bill and replaces its actions, sponsors, committees and
// subjects in one transaction. storedAt is recorded as the write time.
func UpsertBill(ctx context.Context, db *sql.DB, b *bill.Bill, storedAt int64) error {
	ref := b.Ref()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var updateDate sql.NullString
	if b.UpdateDate != nil {
		updateDate = sql.NullString{String: b.UpdateDate.UTC().Format(time.RFC3339), Valid: true}
	}
	mk := b.CongressMakeup

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bills (
			congress, bill_type, bill_number, type_raw, title, status,
			introduced_date, update_date, summary, policy_area, session_day,
			total_cosponsors, total_original_cosponsors, bipartisan_cosponsors,
			sponsor_is_majority, committee_count,
			makeup_number, party_house, party_margin_house,
			party_senate, party_margin_senate, unified_government, stored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (congress, bill_type, bill_number) DO UPDATE SET
			type_raw = excluded.type_raw,
			title = excluded.title,
			status = excluded.status,
			introduced_date = excluded.introduced_date,
			update_date = excluded.update_date,
			summary = excluded.summary,
			policy_area = excluded.policy_area,
			session_day = excluded.session_day,
			total_cosponsors = excluded.total_cosponsors,
			total_original_cosponsors = excluded.total_original_cosponsors,
			bipartisan_cosponsors = excluded.bipartisan_cosponsors,
			sponsor_is_majority = excluded.sponsor_is_majority,
			committee_count = excluded.committee_count,
			makeup_number = excluded.makeup_number,
			party_house = excluded.party_house,
			party_margin_house = excluded.party_margin_house,
			party_senate = excluded.party_senate,
			party_margin_senate = excluded.party_margin_senate,
			unified_government = excluded.unified_government,
			stored_at = excluded.stored_at
	`,
		ref.Congress, ref.Type, ref.Number, b.Type, b.Title, string(b.Status),
		b.IntroducedDate.UTC().Format(dateLayout), updateDate, toNullString(b.Summary),
		toNullString(emptyToNil(b.PolicyArea)), b.IntroducedAtSessionDay,
		b.TotalCosponsors, b.TotalOriginalCosponsors, b.BipartisanCosponsors,
		b.SponsorIsMajority, b.CommitteeCount,
		mk.Number, toNullString(mk.PartyHouse), mk.PartyMarginHouse,
		toNullString(mk.PartySenate), mk.PartyMarginSenate, mk.UnifiedGovernment, storedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	key := []any{ref.Congress, ref.Type, ref.Number}
	for _, table := range []string{"bill_actions", "bill_sponsors", "bill_committees", "bill_subjects"} {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE congress = ? AND bill_type = ? AND bill_number = ?", key...); err != nil {
			return errors.NewInternal(err)
		}
	}

	for i, a := range b.Actions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_actions (congress, bill_type, bill_number, seq, action_code, text, type, action_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ref.Congress, ref.Type, ref.Number, i, toNullString(emptyToNil(a.Code)), a.Text, a.Type,
			a.ActionDate.UTC().Format(dateLayout),
		); err != nil {
			return errors.NewInternal(err)
		}
	}
	for i, s := range b.Sponsors {
		var district sql.NullInt64
		if s.District != nil {
			district = sql.NullInt64{Int64: int64(*s.District), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_sponsors (congress, bill_type, bill_number, seq, full_name, first_name, last_name, party, state, district, role)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ref.Congress, ref.Type, ref.Number, i, s.FullName, s.FirstName, s.LastName, s.Party, s.State,
			district, string(s.Role),
		); err != nil {
			return errors.NewInternal(err)
		}
	}
	for i, c := range b.Committees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_committees (congress, bill_type, bill_number, seq, name, chamber)
			VALUES (?, ?, ?, ?, ?, ?)`,
			ref.Congress, ref.Type, ref.Number, i, c.Name, c.Chamber,
		); err != nil {
			return errors.NewInternal(err)
		}
	}
	for i, s := range b.LegislativeSubjects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_subjects (congress, bill_type, bill_number, seq, name)
			VALUES (?, ?, ?, ?, ?)`,
			ref.Congress, ref.Type, ref.Number, i, s.Name,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetBill loads a stored bill with all of its nested records.
func GetBill(ctx context.Context, db *sql.DB, ref bill.Ref) (*bill.Bill, error) {
	row := db.QueryRowContext(ctx, `
		SELECT type_raw, title, status, introduced_date, update_date, summary, policy_area,
			session_day, total_cosponsors, total_original_cosponsors, bipartisan_cosponsors,
			sponsor_is_majority, committee_count,
			makeup_number, party_house, party_margin_house,
			party_senate, party_margin_senate, unified_government
		FROM bills
		WHERE congress = ? AND bill_type = ? AND bill_number = ?
	`, ref.Congress, ref.Type, ref.Number)

	b, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("bill", ref.String())
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	b.Congress = ref.Congress
	b.Number = ref.Number

	if err := loadChildren(ctx, db, ref, b); err != nil {
		return nil, errors.NewInternal(err)
	}
	return b, nil
}

func scanBill(row *sql.Row) (*bill.Bill, error) {
	var (
		b           bill.Bill
		status      string
		introduced  string
		updateDate  sql.NullString
		summary     sql.NullString
		policyArea  sql.NullString
		partyHouse  sql.NullString
		partySenate sql.NullString
	)
	mk := &b.CongressMakeup
	err := row.Scan(
		&b.Type, &b.Title, &status, &introduced, &updateDate, &summary, &policyArea,
		&b.IntroducedAtSessionDay, &b.TotalCosponsors, &b.TotalOriginalCosponsors, &b.BipartisanCosponsors,
		&b.SponsorIsMajority, &b.CommitteeCount,
		&mk.Number, &partyHouse, &mk.PartyMarginHouse,
		&partySenate, &mk.PartyMarginSenate, &mk.UnifiedGovernment,
	)
	if err != nil {
		return nil, err
	}

	b.Status = bill.Status(status)
	if b.IntroducedDate, err = time.Parse(dateLayout, introduced); err != nil {
		return nil, err
	}
	if updateDate.Valid {
		t, err := time.Parse(time.RFC3339, updateDate.String)
		if err != nil {
			return nil, err
		}
		b.UpdateDate = &t
	}
	b.Summary = fromNullString(summary)
	b.PolicyArea = policyArea.String
	mk.PartyHouse = fromNullString(partyHouse)
	mk.PartySenate = fromNullString(partySenate)
	return &b, nil
}

func loadChildren(ctx context.Context, db *sql.DB, ref bill.Ref, b *bill.Bill) error {
	key := []any{ref.Congress, ref.Type, ref.Number}
	const where = " WHERE congress = ? AND bill_type = ? AND bill_number = ? ORDER BY seq"

	b.Actions = make([]bill.Action, 0)
	err := eachRow(ctx, db, "SELECT action_code, text, type, action_date FROM bill_actions"+where, key,
		func(rows *sql.Rows) error {
			var (
				a    bill.Action
				code sql.NullString
				date string
			)
			if err := rows.Scan(&code, &a.Text, &a.Type, &date); err != nil {
				return err
			}
			t, err := time.Parse(dateLayout, date)
			if err != nil {
				return err
			}
			a.Code = code.String
			a.ActionDate = t
			b.Actions = append(b.Actions, a)
			return nil
		})
	if err != nil {
		return err
	}

	b.Sponsors = make([]bill.Sponsor, 0)
	err = eachRow(ctx, db, "SELECT full_name, first_name, last_name, party, state, district, role FROM bill_sponsors"+where, key,
		func(rows *sql.Rows) error {
			var (
				s        bill.Sponsor
				district sql.NullInt64
				role     string
			)
			if err := rows.Scan(&s.FullName, &s.FirstName, &s.LastName, &s.Party, &s.State, &district, &role); err != nil {
				return err
			}
			if district.Valid {
				d := int(district.Int64)
				s.District = &d
			}
			s.Role = bill.SponsorRole(role)
			b.Sponsors = append(b.Sponsors, s)
			return nil
		})
	if err != nil {
		return err
	}

	b.Committees = make([]bill.Committee, 0)
	err = eachRow(ctx, db, "SELECT name, chamber FROM bill_committees"+where, key,
		func(rows *sql.Rows) error {
			var c bill.Committee
			if err := rows.Scan(&c.Name, &c.Chamber); err != nil {
				return err
			}
			b.Committees = append(b.Committees, c)
			return nil
		})
	if err != nil {
		return err
	}

	b.LegislativeSubjects = make([]bill.Subject, 0)
	return eachRow(ctx, db, "SELECT name FROM bill_subjects"+where, key,
		func(rows *sql.Rows) error {
			var s bill.Subject
			if err := rows.Scan(&s.Name); err != nil {
				return err
			}
			b.LegislativeSubjects = append(b.LegislativeSubjects, s)
			return nil
		})
}

// ListBills returns bill summaries matching filter, most recently stored
// first, along with the total number of matches.
func ListBills(ctx context.Context, db *sql.DB, filter BillFilter, limit, offset int) ([]bill.Summary, int, error) {
	where, args := filter.where()

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT congress, type_raw, bill_number, title, status, policy_area, introduced_date,
			total_cosponsors, bipartisan_cosponsors, sponsor_is_majority, stored_at
		FROM bills` + where + `
		ORDER BY stored_at DESC, congress DESC, bill_type, CAST(bill_number AS INTEGER)
		LIMIT ? OFFSET ?`

	summaries := make([]bill.Summary, 0)
	err := eachRow(ctx, db, query, append(args, limit, offset), func(rows *sql.Rows) error {
		var (
			s          bill.Summary
			status     string
			policyArea sql.NullString
		)
		if err := rows.Scan(
			&s.Congress, &s.Type, &s.Number, &s.Title, &status, &policyArea, &s.IntroducedDate,
			&s.TotalCosponsors, &s.BipartisanCosponsors, &s.SponsorIsMajority, &s.StoredAt,
		); err != nil {
			return err
		}
		s.Status = bill.Status(status)
		s.PolicyArea = policyArea.String
		summaries = append(summaries, s)
		return nil
	})
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return summaries, total, nil
}

// StreamBills calls fn with every bill matching filter, ordered by congress,
// type and number. Iteration stops at the first error from fn or ctx.
func StreamBills(ctx context.Context, db *sql.DB, filter BillFilter, fn func(*bill.Bill) error) error {
	where, args := filter.where()

	refs := make([]bill.Ref, 0)
	err := eachRow(ctx, db,
		"SELECT congress, bill_type, bill_number FROM bills"+where+
			" ORDER BY congress, bill_type, CAST(bill_number AS INTEGER)",
		args, func(rows *sql.Rows) error {
			var r bill.Ref
			if err := rows.Scan(&r.Congress, &r.Type, &r.Number); err != nil {
				return err
			}
			refs = append(refs, r)
			return nil
		})
	if err != nil {
		return errors.NewInternal(err)
	}

	for _, ref := range refs {
		if ctx.Err() != nil {
			return errors.NewCancelled("bill stream")
		}
		b, err := GetBill(ctx, db, ref)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

// CountBills returns the number of stored bills matching filter.
func CountBills(ctx context.Context, db *sql.DB, filter BillFilter) (int, error) {
	where, args := filter.where()
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills"+where, args...).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// eachRow runs query and calls fn for every row.
func eachRow(ctx context.Context, db *sql.DB, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
