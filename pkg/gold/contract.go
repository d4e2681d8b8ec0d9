package gold

import (
	"fmt"
	"strings"

	"github.com/synaptica-ai/warehouse/pkg/silver"
)

// Binding describes what one star-schema table reads from a conformed table.
// Key columns are never null; join columns may be null and the consumer must
// tolerate that.
type Binding struct {
	Consumer string   `json:"consumer"`
	Entity   string   `json:"entity"`
	Table    string   `json:"table"`
	Keys     []string `json:"keys"`
	JoinKeys []string `json:"join_keys"`

	model any
}

func (b Binding) Model() any { return b.model }

func bind(consumer string, model any, entity string, keys []string, joins ...string) Binding {
	return Binding{
		Consumer: consumer,
		Entity:   entity,
		Table:    "silver." + entity,
		Keys:     keys,
		JoinKeys: joins,
		model:    model,
	}
}

var contract = []Binding{
	bind("gold.dim_patient", &silver.Patient{}, "patients", []string{"subject_id"}),
	bind("gold.fact_admission", &silver.Admission{}, "admissions", []string{"hadm_id"}, "subject_id"),
	bind("gold.fact_icu_stay", &silver.ICUStay{}, "icustays", []string{"icustay_id"}, "subject_id", "hadm_id"),
	bind("gold.dim_caregiver", &silver.Caregiver{}, "caregivers", []string{"cgid"}),
	bind("gold.fact_lab_event", &silver.LabEvent{}, "labevents", []string{"row_id"}, "subject_id", "hadm_id", "itemid"),
	bind("gold.fact_prescription", &silver.Prescription{}, "prescriptions", []string{"row_id"}, "subject_id", "hadm_id", "icustay_id"),
	bind("gold.fact_transfer", &silver.Transfer{}, "transfers", []string{"row_id"}, "subject_id", "hadm_id", "icustay_id"),
	bind("gold.fact_output_event", &silver.OutputEvent{}, "outputevents", []string{"row_id"}, "subject_id", "hadm_id", "icustay_id", "itemid", "cgid"),
	bind("gold.fact_procedure", &silver.ProcedureEvent{}, "procedureevents", []string{"row_id"}, "subject_id", "hadm_id", "icustay_id", "itemid"),
	bind("gold.fact_microbiology", &silver.MicrobiologyEvent{}, "microbiologyevents", []string{"row_id"}, "subject_id", "hadm_id"),
	bind("gold.fact_input_event", &silver.InputEvent{}, "inputevents", []string{"source_system", "row_id"}, "subject_id", "hadm_id", "icustay_id", "itemid", "cgid"),
}

// Contract returns every binding in Silver run order.
func Contract() []Binding {
	out := make([]Binding, len(contract))
	copy(out, contract)
	return out
}

func LookupBinding(entity string) (Binding, error) {
	want := strings.ToLower(strings.TrimSpace(entity))
	for _, b := range contract {
		if b.Entity == want {
			return b, nil
		}
	}
	return Binding{}, fmt.Errorf("%w: %s", silver.ErrUnknownEntity, entity)
}
