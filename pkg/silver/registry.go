package silver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
	"gorm.io/gorm"
)

var ErrUnknownEntity = errors.New("unknown silver entity")

// Env carries what every entity run needs.
type Env struct {
	DB        *gorm.DB
	BatchSize int
	Catalog   *terminology.Catalog
}

// Entity is one conformed table and the raw tables it is built from.
type Entity struct {
	Name    string
	Sources []string

	model func() any
	run   func(ctx context.Context, env Env) (Stats, error)
}

func (e Entity) Model() any { return e.model() }

// Table is the schema-qualified conformed table.
func (e Entity) Table() string { return "silver." + e.Name }

func (e Entity) Run(ctx context.Context, env Env) (Stats, error) {
	if env.Catalog == nil {
		env.Catalog = terminology.DefaultCatalog()
	}
	return e.run(ctx, env)
}

// runTable wires the store reader and upsert writer around one transformer.
func runTable[B, S any](ctx context.Context, env Env, name, key string, t Transformer[B, S]) (Stats, error) {
	writer, err := NewUpsertWriter[S](env.DB)
	if err != nil {
		return Stats{}, err
	}
	reader := NewStoreReader[B](env.DB, env.BatchSize, key)
	return NewJob(name, reader, t, writer).Run(ctx)
}

func standard[B, S any](name, source, key string, build func(*terminology.Catalog) Transformer[B, S]) Entity {
	return Entity{
		Name:    name,
		Sources: []string{source},
		model:   func() any { return new(S) },
		run: func(ctx context.Context, env Env) (Stats, error) {
			return runTable(ctx, env, name, key, build(env.Catalog))
		},
	}
}

func fixed[B, S any](f func(*B) (*S, error)) func(*terminology.Catalog) Transformer[B, S] {
	return func(*terminology.Catalog) Transformer[B, S] { return TransformFunc[B, S](f) }
}

func withCatalog[B, S any](f func(*terminology.Catalog) TransformFunc[B, S]) func(*terminology.Catalog) Transformer[B, S] {
	return func(cat *terminology.Catalog) Transformer[B, S] { return f(cat) }
}

var entities = []Entity{
	standard("patients", "patients", "subject_id", fixed(TransformPatient)),
	standard("admissions", "admissions", "hadm_id", fixed(TransformAdmission)),
	standard("icustays", "icustays", "icustay_id", fixed(TransformICUStay)),
	standard("caregivers", "caregivers", "cgid", withCatalog(CaregiverTransformer)),
	standard("labevents", "labevents", "row_id", withCatalog(LabEventTransformer)),
	standard("prescriptions", "prescriptions", "row_id", fixed(TransformPrescription)),
	standard("transfers", "transfers", "row_id", withCatalog(TransferTransformer)),
	standard("outputevents", "outputevents", "row_id", fixed(TransformOutputEvent)),
	standard("procedureevents", "procedureevents_mv", "row_id", fixed(TransformProcedureEvent)),
	standard("microbiologyevents", "microbiologyevents", "row_id", fixed(TransformMicrobiologyEvent)),
	{
		Name:    "inputevents",
		Sources: []string{"inputevents_cv", "inputevents_mv"},
		model:   func() any { return &InputEvent{} },
		run: func(ctx context.Context, env Env) (Stats, error) {
			writer, err := NewUpsertWriter[InputEvent](env.DB)
			if err != nil {
				return Stats{}, err
			}
			return NewInputEventReconciler(
				NewStoreReader[bronze.InputEventCV](env.DB, env.BatchSize, "row_id"),
				NewStoreReader[bronze.InputEventMV](env.DB, env.BatchSize, "row_id"),
				writer,
			).Run(ctx)
		},
	},
}

// Entities returns every conformed table in run order.
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

func Names() []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

func LookupEntity(name string) (Entity, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, e := range entities {
		if e.Name == want {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownEntity, name, strings.Join(Names(), ", "))
}

func Models() []any {
	out := make([]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Model())
	}
	return out
}

// AutoMigrate creates the schemas and the raw and conformed tables.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := database.EnsureSchemas(ctx, db); err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(bronze.Models()...); err != nil {
		return fmt.Errorf("migrate bronze: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate silver: %w", err)
	}
	return nil
}
