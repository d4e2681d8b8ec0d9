package gold

import (
	"context"
	"fmt"
	"strings"

	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"gorm.io/gorm"
)

// TableReport is the contract check of one conformed table.
type TableReport struct {
	Binding
	Exists         bool             `json:"exists"`
	Rows           int64            `json:"rows"`
	NullKeys       int64            `json:"null_keys"`
	NullJoinKeys   map[string]int64 `json:"null_join_keys"`
	OrphanSubjects int64            `json:"orphan_subjects"`
}

// OK is false when Gold cannot build from the table. Null join keys and
// orphans are reported but tolerated.
func (r TableReport) OK() bool {
	return r.Exists && r.NullKeys == 0
}

type Report struct {
	Tables []TableReport `json:"tables"`
}

func (r *Report) OK() bool {
	for _, t := range r.Tables {
		if !t.OK() {
			return false
		}
	}
	return true
}

type Verifier struct {
	db *gorm.DB
}

func NewVerifier(db *gorm.DB) *Verifier {
	return &Verifier{db: db}
}

func (v *Verifier) VerifyAll(ctx context.Context) (*Report, error) {
	report := &Report{}
	for _, b := range contract {
		tr, err := v.Verify(ctx, b)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, tr)
	}
	return report, nil
}

func (v *Verifier) Verify(ctx context.Context, b Binding) (TableReport, error) {
	tx := v.db.WithContext(ctx)
	report := TableReport{Binding: b, NullJoinKeys: make(map[string]int64, len(b.JoinKeys))}

	if !tx.Migrator().HasTable(b.Model()) {
		logger.Log.WithField("table", b.Table).Warn("silver table missing")
		return report, nil
	}
	report.Exists = true

	if err := tx.Table(b.Table).Count(&report.Rows).Error; err != nil {
		return report, fmt.Errorf("count %s: %w", b.Table, err)
	}

	var err error
	if report.NullKeys, err = countNulls(tx, b.Table, b.Keys...); err != nil {
		return report, err
	}
	for _, col := range b.JoinKeys {
		n, err := countNulls(tx, b.Table, col)
		if err != nil {
			return report, err
		}
		report.NullJoinKeys[col] = n
	}

	if b.Entity != "patients" && hasJoin(b, "subject_id") {
		if err := orphanQuery(tx, b.Table).Count(&report.OrphanSubjects).Error; err != nil {
			return report, fmt.Errorf("orphans %s: %w", b.Table, err)
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"table":     b.Table,
		"rows":      report.Rows,
		"null_keys": report.NullKeys,
		"orphans":   report.OrphanSubjects,
	}).Debug("silver table verified")
	return report, nil
}

// countNulls counts rows where any of cols is null.
func countNulls(tx *gorm.DB, table string, cols ...string) (int64, error) {
	var n int64
	if err := nullQuery(tx, table, cols...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("null count %s: %w", table, err)
	}
	return n, nil
}

func nullQuery(tx *gorm.DB, table string, cols ...string) *gorm.DB {
	conds := make([]string, len(cols))
	for i, col := range cols {
		conds[i] = tx.Statement.Quote(col) + " IS NULL"
	}
	return tx.Table(table).Where(strings.Join(conds, " OR "))
}

// orphanQuery selects rows whose subject is not a conformed patient.
func orphanQuery(tx *gorm.DB, table string) *gorm.DB {
	return tx.Table(table+" AS t").
		Where("t.subject_id IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM silver.patients p WHERE p.subject_id = t.subject_id)")
}

func hasJoin(b Binding, col string) bool {
	for _, c := range b.JoinKeys {
		if c == col {
			return true
		}
	}
	return false
}
