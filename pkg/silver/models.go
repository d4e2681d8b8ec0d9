package silver

import "time"

const (
	SourceCareVue    = "CareVue"
	SourceMetaVision = "MetaVision"
)

// Audit is embedded in every conformed table. Inserts stamp both columns;
// an upsert that hits an existing row refreshes only UpdatedAt.
type Audit struct {
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

type Patient struct {
	SubjectID     int64      `json:"subject_id" gorm:"primaryKey;autoIncrement:false;column:subject_id"`
	Gender        string     `json:"gender" gorm:"column:gender;size:1;not null"`
	DateOfBirth   *time.Time `json:"date_of_birth" gorm:"column:date_of_birth;type:date"`
	DateOfDeath   *time.Time `json:"date_of_death" gorm:"column:date_of_death;type:date"`
	IsDeceased    bool       `json:"is_deceased" gorm:"column:is_deceased"`
	DOBShiftYears *int64     `json:"dob_shift_years" gorm:"column:dob_shift_years"`
	Audit
}

func (Patient) TableName() string { return "silver.patients" }

type Admission struct {
	HadmID             int64      `json:"hadm_id" gorm:"primaryKey;autoIncrement:false;column:hadm_id"`
	SubjectID          *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	AdmissionType      *string    `json:"admission_type" gorm:"column:admission_type"`
	AdmissionLocation  *string    `json:"admission_location" gorm:"column:admission_location"`
	DischargeLocation  *string    `json:"discharge_location" gorm:"column:discharge_location"`
	AdmitTime          *time.Time `json:"admittime" gorm:"column:admittime;index"`
	DischTime          *time.Time `json:"dischtime" gorm:"column:dischtime"`
	EDRegTime          *time.Time `json:"edregtime" gorm:"column:edregtime"`
	EDOutTime          *time.Time `json:"edouttime" gorm:"column:edouttime"`
	LOSDays            *float64   `json:"los_days" gorm:"column:los_days"`
	LOSHours           *float64   `json:"los_hours" gorm:"column:los_hours"`
	Diagnosis          *string    `json:"diagnosis" gorm:"column:diagnosis"`
	HospitalExpireFlag bool       `json:"hospital_expire_flag" gorm:"column:hospital_expire_flag"`
	Insurance          *string    `json:"insurance" gorm:"column:insurance"`
	Language           *string    `json:"language" gorm:"column:language"`
	Religion           *string    `json:"religion" gorm:"column:religion"`
	MaritalStatus      *string    `json:"marital_status" gorm:"column:marital_status"`
	Ethnicity          *string    `json:"ethnicity" gorm:"column:ethnicity"`
	Audit
}

func (Admission) TableName() string { return "silver.admissions" }

type ICUStay struct {
	ICUStayID     int64      `json:"icustay_id" gorm:"primaryKey;autoIncrement:false;column:icustay_id"`
	SubjectID     *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID        *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	FirstCareUnit *string    `json:"first_careunit" gorm:"column:first_careunit"`
	LastCareUnit  *string    `json:"last_careunit" gorm:"column:last_careunit"`
	FirstWardID   *int64     `json:"first_wardid" gorm:"column:first_wardid"`
	LastWardID    *int64     `json:"last_wardid" gorm:"column:last_wardid"`
	InTime        *time.Time `json:"intime" gorm:"column:intime;index"`
	OutTime       *time.Time `json:"outtime" gorm:"column:outtime"`
	LOSICUDays    *float64   `json:"los_icu_days" gorm:"column:los_icu_days"`
	LOSICUHours   *float64   `json:"los_icu_hours" gorm:"column:los_icu_hours"`
	Audit
}

func (ICUStay) TableName() string { return "silver.icustays" }

type Caregiver struct {
	CGID         int64   `json:"cgid" gorm:"primaryKey;autoIncrement:false;column:cgid"`
	Label        *string `json:"label" gorm:"column:label"`
	Description  *string `json:"description" gorm:"column:description"`
	RoleCategory *string `json:"role_category" gorm:"column:role_category"`
	Audit
}

func (Caregiver) TableName() string { return "silver.caregivers" }

type LabEvent struct {
	RowID      int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID  *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID     *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ItemID     *int64     `json:"itemid" gorm:"column:itemid;index"`
	ChartTime  *time.Time `json:"charttime" gorm:"column:charttime"`
	Value      *string    `json:"value" gorm:"column:value"`
	ValueNum   *float64   `json:"valuenum" gorm:"column:valuenum"`
	ValueUOM   *string    `json:"valueuom" gorm:"column:valueuom"`
	Flag       *string    `json:"flag" gorm:"column:flag"`
	IsAbnormal bool       `json:"is_abnormal" gorm:"column:is_abnormal"`
	Audit
}

func (LabEvent) TableName() string { return "silver.labevents" }

type Prescription struct {
	RowID           int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID       *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID          *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ICUStayID       *int64     `json:"icustay_id" gorm:"column:icustay_id"`
	StartDate       *time.Time `json:"startdate" gorm:"column:startdate"`
	EndDate         *time.Time `json:"enddate" gorm:"column:enddate"`
	DrugType        *string    `json:"drug_type" gorm:"column:drug_type"`
	Drug            *string    `json:"drug" gorm:"column:drug;index"`
	DrugNameGeneric *string    `json:"drug_name_generic" gorm:"column:drug_name_generic"`
	FormularyDrugCD *string    `json:"formulary_drug_cd" gorm:"column:formulary_drug_cd"`
	DoseValRx       *float64   `json:"dose_val_rx" gorm:"column:dose_val_rx"`
	DoseUnitRx      *string    `json:"dose_unit_rx" gorm:"column:dose_unit_rx"`
	FormValDisp     *float64   `json:"form_val_disp" gorm:"column:form_val_disp"`
	FormUnitDisp    *string    `json:"form_unit_disp" gorm:"column:form_unit_disp"`
	Route           *string    `json:"route" gorm:"column:route"`
	DurationDays    *float64   `json:"duration_days" gorm:"column:duration_days"`
	Audit
}

func (Prescription) TableName() string { return "silver.prescriptions" }

type Transfer struct {
	RowID         int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID     *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID        *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ICUStayID     *int64     `json:"icustay_id" gorm:"column:icustay_id"`
	EventType     *string    `json:"eventtype" gorm:"column:eventtype"`
	PrevCareUnit  *string    `json:"prev_careunit" gorm:"column:prev_careunit"`
	CurrCareUnit  *string    `json:"curr_careunit" gorm:"column:curr_careunit"`
	PrevWardID    *int64     `json:"prev_wardid" gorm:"column:prev_wardid"`
	CurrWardID    *int64     `json:"curr_wardid" gorm:"column:curr_wardid"`
	InTime        *time.Time `json:"intime" gorm:"column:intime;index"`
	OutTime       *time.Time `json:"outtime" gorm:"column:outtime"`
	DurationHours *float64   `json:"duration_hours" gorm:"column:duration_hours"`
	IsICUTransfer bool       `json:"is_icu_transfer" gorm:"column:is_icu_transfer"`
	Audit
}

func (Transfer) TableName() string { return "silver.transfers" }

type OutputEvent struct {
	RowID     int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID    *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ICUStayID *int64     `json:"icustay_id" gorm:"column:icustay_id;index"`
	ItemID    *int64     `json:"itemid" gorm:"column:itemid;index"`
	ChartTime *time.Time `json:"charttime" gorm:"column:charttime"`
	Value     *float64   `json:"value" gorm:"column:value"`
	ValueUOM  *string    `json:"valueuom" gorm:"column:valueuom"`
	CGID      *int64     `json:"cgid" gorm:"column:cgid"`
	Audit
}

func (OutputEvent) TableName() string { return "silver.outputevents" }

type ProcedureEvent struct {
	RowID             int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID         *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID            *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ICUStayID         *int64     `json:"icustay_id" gorm:"column:icustay_id"`
	ItemID            *int64     `json:"itemid" gorm:"column:itemid;index"`
	StartTime         *time.Time `json:"starttime" gorm:"column:starttime"`
	EndTime           *time.Time `json:"endtime" gorm:"column:endtime"`
	Value             *float64   `json:"value" gorm:"column:value"`
	ValueUOM          *string    `json:"valueuom" gorm:"column:valueuom"`
	Location          *string    `json:"location" gorm:"column:location"`
	StatusDescription *string    `json:"status_description" gorm:"column:status_description"`
	IsCompleted       bool       `json:"is_completed" gorm:"column:is_completed"`
	IsCanceled        bool       `json:"is_canceled" gorm:"column:is_canceled"`
	DurationHours     *float64   `json:"duration_hours" gorm:"column:duration_hours"`
	Audit
}

func (ProcedureEvent) TableName() string { return "silver.procedureevents" }

type MicrobiologyEvent struct {
	RowID          int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID      *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID         *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ChartDate      *time.Time `json:"chartdate" gorm:"column:chartdate;type:date"`
	ChartTime      *time.Time `json:"charttime" gorm:"column:charttime"`
	SpecItemID     *int64     `json:"spec_itemid" gorm:"column:spec_itemid"`
	SpecTypeDesc   *string    `json:"spec_type_desc" gorm:"column:spec_type_desc"`
	OrgItemID      *int64     `json:"org_itemid" gorm:"column:org_itemid"`
	OrgName        *string    `json:"org_name" gorm:"column:org_name;index"`
	ABItemID       *int64     `json:"ab_itemid" gorm:"column:ab_itemid"`
	ABName         *string    `json:"ab_name" gorm:"column:ab_name"`
	DilutionText   *string    `json:"dilution_text" gorm:"column:dilution_text"`
	Interpretation *string    `json:"interpretation" gorm:"column:interpretation"`
	IsPositive     bool       `json:"is_positive" gorm:"column:is_positive"`
	IsResistant    bool       `json:"is_resistant" gorm:"column:is_resistant"`
	Audit
}

func (MicrobiologyEvent) TableName() string { return "silver.microbiologyevents" }

// InputEvent merges both charting systems. RowID is only unique within a
// source system, so the key is the pair.
type InputEvent struct {
	SourceSystem  string     `json:"source_system" gorm:"primaryKey;column:source_system;size:20"`
	RowID         int64      `json:"row_id" gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID     *int64     `json:"subject_id" gorm:"column:subject_id;index"`
	HadmID        *int64     `json:"hadm_id" gorm:"column:hadm_id;index"`
	ICUStayID     *int64     `json:"icustay_id" gorm:"column:icustay_id;index"`
	ItemID        *int64     `json:"itemid" gorm:"column:itemid;index"`
	ChartTime     *time.Time `json:"charttime" gorm:"column:charttime"`
	StartTime     *time.Time `json:"starttime" gorm:"column:starttime"`
	EndTime       *time.Time `json:"endtime" gorm:"column:endtime"`
	Amount        *float64   `json:"amount" gorm:"column:amount"`
	AmountUOM     *string    `json:"amountuom" gorm:"column:amountuom"`
	Rate          *float64   `json:"rate" gorm:"column:rate"`
	RateUOM       *string    `json:"rateuom" gorm:"column:rateuom"`
	CGID          *int64     `json:"cgid" gorm:"column:cgid"`
	DurationHours *float64   `json:"duration_hours" gorm:"column:duration_hours"`
	IsBolus       bool       `json:"is_bolus" gorm:"column:is_bolus"`
	Audit
}

func (InputEvent) TableName() string { return "silver.inputevents" }
