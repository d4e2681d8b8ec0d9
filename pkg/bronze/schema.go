package bronze

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEntity = errors.New("unknown bronze table")

// Field is one typed CSV column.
type Field struct {
	Name string
	Kind Kind
}

// Schema describes one raw table: the CSV it is read from, its natural key
// and the declared type of every column.
type Schema struct {
	Name   string
	Table  string
	Key    string
	Fields []Field

	model func() any
}

// FileName is the CSV file the table is loaded from.
func (s Schema) FileName() string {
	return s.Name + ".csv"
}

// QualifiedTable is the table name including its schema.
func (s Schema) QualifiedTable() string {
	return "bronze." + s.Table
}

// Model returns a zero value of the table's gorm model.
func (s Schema) Model() any {
	return s.model()
}

func (s Schema) Kind(field string) (Kind, bool) {
	for _, f := range s.Fields {
		if f.Name == field {
			return f.Kind, true
		}
	}
	return KindString, false
}

// Lookup accepts either the CSV name ("LABEVENTS") or the table name
// ("labevents").
func Lookup(name string) (Schema, error) {
	want := strings.TrimSpace(name)
	for _, s := range schemas {
		if strings.EqualFold(s.Name, want) || strings.EqualFold(s.Table, want) {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
}

// Schemas returns every raw table in load order.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// Models returns the gorm models of every raw table, for migration.
func Models() []any {
	out := make([]any, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Model())
	}
	return out
}

var schemas = []Schema{
	{
		Name:  "PATIENTS",
		Table: "patients",
		Key:   "subject_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"gender", KindString},
			{"dob", KindDateTime},
			{"dod", KindDateTime},
			{"dod_hosp", KindDateTime},
			{"dod_ssn", KindDateTime},
			{"expire_flag", KindBool},
		},
		model: func() any { return &Patient{} },
	},
	{
		Name:  "ADMISSIONS",
		Table: "admissions",
		Key:   "hadm_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"admittime", KindDateTime},
			{"dischtime", KindDateTime},
			{"deathtime", KindDateTime},
			{"admission_type", KindString},
			{"admission_location", KindString},
			{"discharge_location", KindString},
			{"insurance", KindString},
			{"language", KindString},
			{"religion", KindString},
			{"marital_status", KindString},
			{"ethnicity", KindString},
			{"edregtime", KindDateTime},
			{"edouttime", KindDateTime},
			{"diagnosis", KindString},
			{"hospital_expire_flag", KindBool},
			{"has_chartevents_data", KindBool},
		},
		model: func() any { return &Admission{} },
	},
	{
		Name:  "ICUSTAYS",
		Table: "icustays",
		Key:   "icustay_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"dbsource", KindString},
			{"first_careunit", KindString},
			{"last_careunit", KindString},
			{"first_wardid", KindInt},
			{"last_wardid", KindInt},
			{"intime", KindDateTime},
			{"outtime", KindDateTime},
			{"los", KindFloat},
		},
		model: func() any { return &ICUStay{} },
	},
	{
		Name:  "CAREGIVERS",
		Table: "caregivers",
		Key:   "cgid",
		Fields: []Field{
			{"row_id", KindInt},
			{"cgid", KindInt},
			{"label", KindString},
			{"description", KindString},
		},
		model: func() any { return &Caregiver{} },
	},
	{
		Name:  "SERVICES",
		Table: "services",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"transfertime", KindDateTime},
			{"prev_service", KindString},
			{"curr_service", KindString},
		},
		model: func() any { return &Service{} },
	},
	{
		Name:  "TRANSFERS",
		Table: "transfers",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"dbsource", KindString},
			{"eventtype", KindString},
			{"prev_careunit", KindString},
			{"curr_careunit", KindString},
			{"prev_wardid", KindInt},
			{"curr_wardid", KindInt},
			{"intime", KindDateTime},
			{"outtime", KindDateTime},
			{"los", KindFloat},
		},
		model: func() any { return &Transfer{} },
	},
	{
		Name:  "D_ITEMS",
		Table: "d_items",
		Key:   "itemid",
		Fields: []Field{
			{"row_id", KindInt},
			{"itemid", KindInt},
			{"label", KindString},
			{"abbreviation", KindString},
			{"dbsource", KindString},
			{"linksto", KindString},
			{"category", KindString},
			{"unitname", KindString},
			{"param_type", KindString},
			{"conceptid", KindInt},
		},
		model: func() any { return &DItem{} },
	},
	{
		Name:  "D_LABITEMS",
		Table: "d_labitems",
		Key:   "itemid",
		Fields: []Field{
			{"row_id", KindInt},
			{"itemid", KindInt},
			{"label", KindString},
			{"fluid", KindString},
			{"category", KindString},
			{"loinc_code", KindString},
		},
		model: func() any { return &DLabItem{} },
	},
	{
		Name:  "LABEVENTS",
		Table: "labevents",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"itemid", KindInt},
			{"charttime", KindDateTime},
			{"value", KindString},
			{"valuenum", KindFloat},
			{"valueuom", KindString},
			{"flag", KindString},
		},
		model: func() any { return &LabEvent{} },
	},
	{
		Name:  "INPUTEVENTS_CV",
		Table: "inputevents_cv",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"charttime", KindDateTime},
			{"itemid", KindInt},
			{"amount", KindFloat},
			{"amountuom", KindString},
			{"rate", KindFloat},
			{"rateuom", KindString},
			{"storetime", KindDateTime},
			{"cgid", KindInt},
			{"orderid", KindInt},
			{"linkorderid", KindInt},
			{"stopped", KindString},
			{"newbottle", KindBool},
			{"originalamount", KindFloat},
			{"originalamountuom", KindString},
			{"originalroute", KindString},
			{"originalrate", KindFloat},
			{"originalrateuom", KindString},
			{"originalsite", KindString},
		},
		model: func() any { return &InputEventCV{} },
	},
	{
		Name:  "INPUTEVENTS_MV",
		Table: "inputevents_mv",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"starttime", KindDateTime},
			{"endtime", KindDateTime},
			{"itemid", KindInt},
			{"amount", KindFloat},
			{"amountuom", KindString},
			{"rate", KindFloat},
			{"rateuom", KindString},
			{"storetime", KindDateTime},
			{"cgid", KindInt},
			{"orderid", KindInt},
			{"linkorderid", KindInt},
			{"ordercategoryname", KindString},
			{"secondaryordercategoryname", KindString},
			{"ordercomponenttypedescription", KindString},
			{"ordercategorydescription", KindString},
			{"patientweight", KindFloat},
			{"totalamount", KindFloat},
			{"totalamountuom", KindString},
			{"isopenbag", KindBool},
			{"continueinnextdept", KindBool},
			{"cancelreason", KindString},
			{"statusdescription", KindString},
			{"comments_editedby", KindString},
			{"comments_canceledby", KindString},
			{"comments_date", KindDateTime},
			{"originalamount", KindFloat},
			{"originalrate", KindFloat},
		},
		model: func() any { return &InputEventMV{} },
	},
	{
		Name:  "OUTPUTEVENTS",
		Table: "outputevents",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"charttime", KindDateTime},
			{"itemid", KindInt},
			{"value", KindFloat},
			{"valueuom", KindString},
			{"storetime", KindDateTime},
			{"cgid", KindInt},
			{"stopped", KindString},
			{"newbottle", KindBool},
			{"iserror", KindBool},
		},
		model: func() any { return &OutputEvent{} },
	},
	{
		Name:  "PRESCRIPTIONS",
		Table: "prescriptions",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"startdate", KindDateTime},
			{"enddate", KindDateTime},
			{"drug_type", KindString},
			{"drug", KindString},
			{"drug_name_poe", KindString},
			{"drug_name_generic", KindString},
			{"formulary_drug_cd", KindString},
			{"gsn", KindString},
			{"ndc", KindString},
			{"prod_strength", KindString},
			{"dose_val_rx", KindString},
			{"dose_unit_rx", KindString},
			{"form_val_disp", KindString},
			{"form_unit_disp", KindString},
			{"route", KindString},
		},
		model: func() any { return &Prescription{} },
	},
	{
		Name:  "PROCEDUREEVENTS_MV",
		Table: "procedureevents_mv",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"icustay_id", KindInt},
			{"starttime", KindDateTime},
			{"endtime", KindDateTime},
			{"itemid", KindInt},
			{"value", KindFloat},
			{"valueuom", KindString},
			{"location", KindString},
			{"locationcategory", KindString},
			{"storetime", KindDateTime},
			{"cgid", KindInt},
			{"orderid", KindInt},
			{"linkorderid", KindInt},
			{"ordercategoryname", KindString},
			{"secondaryordercategoryname", KindString},
			{"ordercategorydescription", KindString},
			{"isopenbag", KindBool},
			{"continueinnextdept", KindBool},
			{"cancelreason", KindString},
			{"statusdescription", KindString},
			{"comments_editedby", KindString},
			{"comments_canceledby", KindString},
			{"comments_date", KindDateTime},
		},
		model: func() any { return &ProcedureEventMV{} },
	},
	{
		Name:  "MICROBIOLOGYEVENTS",
		Table: "microbiologyevents",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"chartdate", KindDate},
			{"charttime", KindDateTime},
			{"spec_itemid", KindInt},
			{"spec_type_desc", KindString},
			{"org_itemid", KindInt},
			{"org_name", KindString},
			{"isolate_num", KindInt},
			{"ab_itemid", KindInt},
			{"ab_name", KindString},
			{"dilution_text", KindString},
			{"dilution_comparison", KindString},
			{"dilution_value", KindFloat},
			{"interpretation", KindString},
		},
		model: func() any { return &MicrobiologyEvent{} },
	},
	{
		Name:  "NOTEEVENTS",
		Table: "noteevents",
		Key:   "row_id",
		Fields: []Field{
			{"row_id", KindInt},
			{"subject_id", KindInt},
			{"hadm_id", KindInt},
			{"chartdate", KindDateTime},
			{"charttime", KindDateTime},
			{"storetime", KindDateTime},
			{"category", KindString},
			{"description", KindString},
			{"cgid", KindInt},
			{"iserror", KindString},
			{"text", KindString},
		},
		model: func() any { return &NoteEvent{} },
	},
}
