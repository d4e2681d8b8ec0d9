package bronze

import "time"

// Raw tables mirror the CSV columns. Only the natural key is required;
// every other column keeps whatever the source carried, including nothing.

type Patient struct {
	RowID      *int64     `gorm:"column:row_id"`
	SubjectID  int64      `gorm:"primaryKey;autoIncrement:false;column:subject_id"`
	Gender     *string    `gorm:"column:gender"`
	DOB        *time.Time `gorm:"column:dob"`
	DOD        *time.Time `gorm:"column:dod"`
	DODHosp    *time.Time `gorm:"column:dod_hosp"`
	DODSSN     *time.Time `gorm:"column:dod_ssn"`
	ExpireFlag *bool      `gorm:"column:expire_flag"`
}

func (Patient) TableName() string { return "bronze.patients" }

type Admission struct {
	RowID              *int64     `gorm:"column:row_id"`
	SubjectID          *int64     `gorm:"column:subject_id"`
	HadmID             int64      `gorm:"primaryKey;autoIncrement:false;column:hadm_id"`
	AdmitTime          *time.Time `gorm:"column:admittime"`
	DischTime          *time.Time `gorm:"column:dischtime"`
	DeathTime          *time.Time `gorm:"column:deathtime"`
	AdmissionType      *string    `gorm:"column:admission_type"`
	AdmissionLocation  *string    `gorm:"column:admission_location"`
	DischargeLocation  *string    `gorm:"column:discharge_location"`
	Insurance          *string    `gorm:"column:insurance"`
	Language           *string    `gorm:"column:language"`
	Religion           *string    `gorm:"column:religion"`
	MaritalStatus      *string    `gorm:"column:marital_status"`
	Ethnicity          *string    `gorm:"column:ethnicity"`
	EDRegTime          *time.Time `gorm:"column:edregtime"`
	EDOutTime          *time.Time `gorm:"column:edouttime"`
	Diagnosis          *string    `gorm:"column:diagnosis"`
	HospitalExpireFlag *bool      `gorm:"column:hospital_expire_flag"`
	HasCharteventsData *bool      `gorm:"column:has_chartevents_data"`
}

func (Admission) TableName() string { return "bronze.admissions" }

type ICUStay struct {
	RowID         *int64     `gorm:"column:row_id"`
	SubjectID     *int64     `gorm:"column:subject_id"`
	HadmID        *int64     `gorm:"column:hadm_id"`
	ICUStayID     int64      `gorm:"primaryKey;autoIncrement:false;column:icustay_id"`
	DBSource      *string    `gorm:"column:dbsource"`
	FirstCareUnit *string    `gorm:"column:first_careunit"`
	LastCareUnit  *string    `gorm:"column:last_careunit"`
	FirstWardID   *int64     `gorm:"column:first_wardid"`
	LastWardID    *int64     `gorm:"column:last_wardid"`
	InTime        *time.Time `gorm:"column:intime"`
	OutTime       *time.Time `gorm:"column:outtime"`
	LOS           *float64   `gorm:"column:los"`
}

func (ICUStay) TableName() string { return "bronze.icustays" }

type Caregiver struct {
	RowID       *int64  `gorm:"column:row_id"`
	CGID        int64   `gorm:"primaryKey;autoIncrement:false;column:cgid"`
	Label       *string `gorm:"column:label"`
	Description *string `gorm:"column:description"`
}

func (Caregiver) TableName() string { return "bronze.caregivers" }

type Service struct {
	RowID        int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID    *int64     `gorm:"column:subject_id"`
	HadmID       *int64     `gorm:"column:hadm_id"`
	TransferTime *time.Time `gorm:"column:transfertime"`
	PrevService  *string    `gorm:"column:prev_service"`
	CurrService  *string    `gorm:"column:curr_service"`
}

func (Service) TableName() string { return "bronze.services" }

type Transfer struct {
	RowID        int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID    *int64     `gorm:"column:subject_id"`
	HadmID       *int64     `gorm:"column:hadm_id"`
	ICUStayID    *int64     `gorm:"column:icustay_id"`
	DBSource     *string    `gorm:"column:dbsource"`
	EventType    *string    `gorm:"column:eventtype"`
	PrevCareUnit *string    `gorm:"column:prev_careunit"`
	CurrCareUnit *string    `gorm:"column:curr_careunit"`
	PrevWardID   *int64     `gorm:"column:prev_wardid"`
	CurrWardID   *int64     `gorm:"column:curr_wardid"`
	InTime       *time.Time `gorm:"column:intime"`
	OutTime      *time.Time `gorm:"column:outtime"`
	LOS          *float64   `gorm:"column:los"`
}

func (Transfer) TableName() string { return "bronze.transfers" }

type DItem struct {
	RowID        *int64  `gorm:"column:row_id"`
	ItemID       int64   `gorm:"primaryKey;autoIncrement:false;column:itemid"`
	Label        *string `gorm:"column:label"`
	Abbreviation *string `gorm:"column:abbreviation"`
	DBSource     *string `gorm:"column:dbsource"`
	LinksTo      *string `gorm:"column:linksto"`
	Category     *string `gorm:"column:category"`
	UnitName     *string `gorm:"column:unitname"`
	ParamType    *string `gorm:"column:param_type"`
	ConceptID    *int64  `gorm:"column:conceptid"`
}

func (DItem) TableName() string { return "bronze.d_items" }

type DLabItem struct {
	RowID     *int64  `gorm:"column:row_id"`
	ItemID    int64   `gorm:"primaryKey;autoIncrement:false;column:itemid"`
	Label     *string `gorm:"column:label"`
	Fluid     *string `gorm:"column:fluid"`
	Category  *string `gorm:"column:category"`
	LOINCCode *string `gorm:"column:loinc_code"`
}

func (DLabItem) TableName() string { return "bronze.d_labitems" }

type LabEvent struct {
	RowID     int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID *int64     `gorm:"column:subject_id"`
	HadmID    *int64     `gorm:"column:hadm_id"`
	ItemID    *int64     `gorm:"column:itemid"`
	ChartTime *time.Time `gorm:"column:charttime"`
	Value     *string    `gorm:"column:value"`
	ValueNum  *float64   `gorm:"column:valuenum"`
	ValueUOM  *string    `gorm:"column:valueuom"`
	Flag      *string    `gorm:"column:flag"`
}

func (LabEvent) TableName() string { return "bronze.labevents" }

type InputEventCV struct {
	RowID             int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID         *int64     `gorm:"column:subject_id"`
	HadmID            *int64     `gorm:"column:hadm_id"`
	ICUStayID         *int64     `gorm:"column:icustay_id"`
	ChartTime         *time.Time `gorm:"column:charttime"`
	ItemID            *int64     `gorm:"column:itemid"`
	Amount            *float64   `gorm:"column:amount"`
	AmountUOM         *string    `gorm:"column:amountuom"`
	Rate              *float64   `gorm:"column:rate"`
	RateUOM           *string    `gorm:"column:rateuom"`
	StoreTime         *time.Time `gorm:"column:storetime"`
	CGID              *int64     `gorm:"column:cgid"`
	OrderID           *int64     `gorm:"column:orderid"`
	LinkOrderID       *int64     `gorm:"column:linkorderid"`
	Stopped           *string    `gorm:"column:stopped"`
	NewBottle         *bool      `gorm:"column:newbottle"`
	OriginalAmount    *float64   `gorm:"column:originalamount"`
	OriginalAmountUOM *string    `gorm:"column:originalamountuom"`
	OriginalRoute     *string    `gorm:"column:originalroute"`
	OriginalRate      *float64   `gorm:"column:originalrate"`
	OriginalRateUOM   *string    `gorm:"column:originalrateuom"`
	OriginalSite      *string    `gorm:"column:originalsite"`
}

func (InputEventCV) TableName() string { return "bronze.inputevents_cv" }

type InputEventMV struct {
	RowID                         int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID                     *int64     `gorm:"column:subject_id"`
	HadmID                        *int64     `gorm:"column:hadm_id"`
	ICUStayID                     *int64     `gorm:"column:icustay_id"`
	StartTime                     *time.Time `gorm:"column:starttime"`
	EndTime                       *time.Time `gorm:"column:endtime"`
	ItemID                        *int64     `gorm:"column:itemid"`
	Amount                        *float64   `gorm:"column:amount"`
	AmountUOM                     *string    `gorm:"column:amountuom"`
	Rate                          *float64   `gorm:"column:rate"`
	RateUOM                       *string    `gorm:"column:rateuom"`
	StoreTime                     *time.Time `gorm:"column:storetime"`
	CGID                          *int64     `gorm:"column:cgid"`
	OrderID                       *int64     `gorm:"column:orderid"`
	LinkOrderID                   *int64     `gorm:"column:linkorderid"`
	OrderCategoryName             *string    `gorm:"column:ordercategoryname"`
	SecondaryOrderCategoryName    *string    `gorm:"column:secondaryordercategoryname"`
	OrderComponentTypeDescription *string    `gorm:"column:ordercomponenttypedescription"`
	OrderCategoryDescription      *string    `gorm:"column:ordercategorydescription"`
	PatientWeight                 *float64   `gorm:"column:patientweight"`
	TotalAmount                   *float64   `gorm:"column:totalamount"`
	TotalAmountUOM                *string    `gorm:"column:totalamountuom"`
	IsOpenBag                     *bool      `gorm:"column:isopenbag"`
	ContinueInNextDept            *bool      `gorm:"column:continueinnextdept"`
	CancelReason                  *string    `gorm:"column:cancelreason"`
	StatusDescription             *string    `gorm:"column:statusdescription"`
	CommentsEditedBy              *string    `gorm:"column:comments_editedby"`
	CommentsCanceledBy            *string    `gorm:"column:comments_canceledby"`
	CommentsDate                  *time.Time `gorm:"column:comments_date"`
	OriginalAmount                *float64   `gorm:"column:originalamount"`
	OriginalRate                  *float64   `gorm:"column:originalrate"`
}

func (InputEventMV) TableName() string { return "bronze.inputevents_mv" }

type OutputEvent struct {
	RowID     int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID *int64     `gorm:"column:subject_id"`
	HadmID    *int64     `gorm:"column:hadm_id"`
	ICUStayID *int64     `gorm:"column:icustay_id"`
	ChartTime *time.Time `gorm:"column:charttime"`
	ItemID    *int64     `gorm:"column:itemid"`
	Value     *float64   `gorm:"column:value"`
	ValueUOM  *string    `gorm:"column:valueuom"`
	StoreTime *time.Time `gorm:"column:storetime"`
	CGID      *int64     `gorm:"column:cgid"`
	Stopped   *string    `gorm:"column:stopped"`
	NewBottle *bool      `gorm:"column:newbottle"`
	IsError   *bool      `gorm:"column:iserror"`
}

func (OutputEvent) TableName() string { return "bronze.outputevents" }

type Prescription struct {
	RowID           int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID       *int64     `gorm:"column:subject_id"`
	HadmID          *int64     `gorm:"column:hadm_id"`
	ICUStayID       *int64     `gorm:"column:icustay_id"`
	StartDate       *time.Time `gorm:"column:startdate"`
	EndDate         *time.Time `gorm:"column:enddate"`
	DrugType        *string    `gorm:"column:drug_type"`
	Drug            *string    `gorm:"column:drug"`
	DrugNamePOE     *string    `gorm:"column:drug_name_poe"`
	DrugNameGeneric *string    `gorm:"column:drug_name_generic"`
	FormularyDrugCD *string    `gorm:"column:formulary_drug_cd"`
	GSN             *string    `gorm:"column:gsn"`
	NDC             *string    `gorm:"column:ndc"`
	ProdStrength    *string    `gorm:"column:prod_strength"`
	DoseValRx       *string    `gorm:"column:dose_val_rx"`
	DoseUnitRx      *string    `gorm:"column:dose_unit_rx"`
	FormValDisp     *string    `gorm:"column:form_val_disp"`
	FormUnitDisp    *string    `gorm:"column:form_unit_disp"`
	Route           *string    `gorm:"column:route"`
}

func (Prescription) TableName() string { return "bronze.prescriptions" }

type ProcedureEventMV struct {
	RowID                      int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID                  *int64     `gorm:"column:subject_id"`
	HadmID                     *int64     `gorm:"column:hadm_id"`
	ICUStayID                  *int64     `gorm:"column:icustay_id"`
	StartTime                  *time.Time `gorm:"column:starttime"`
	EndTime                    *time.Time `gorm:"column:endtime"`
	ItemID                     *int64     `gorm:"column:itemid"`
	Value                      *float64   `gorm:"column:value"`
	ValueUOM                   *string    `gorm:"column:valueuom"`
	Location                   *string    `gorm:"column:location"`
	LocationCategory           *string    `gorm:"column:locationcategory"`
	StoreTime                  *time.Time `gorm:"column:storetime"`
	CGID                       *int64     `gorm:"column:cgid"`
	OrderID                    *int64     `gorm:"column:orderid"`
	LinkOrderID                *int64     `gorm:"column:linkorderid"`
	OrderCategoryName          *string    `gorm:"column:ordercategoryname"`
	SecondaryOrderCategoryName *string    `gorm:"column:secondaryordercategoryname"`
	OrderCategoryDescription   *string    `gorm:"column:ordercategorydescription"`
	IsOpenBag                  *bool      `gorm:"column:isopenbag"`
	ContinueInNextDept         *bool      `gorm:"column:continueinnextdept"`
	CancelReason               *string    `gorm:"column:cancelreason"`
	StatusDescription          *string    `gorm:"column:statusdescription"`
	CommentsEditedBy           *string    `gorm:"column:comments_editedby"`
	CommentsCanceledBy         *string    `gorm:"column:comments_canceledby"`
	CommentsDate               *time.Time `gorm:"column:comments_date"`
}

func (ProcedureEventMV) TableName() string { return "bronze.procedureevents_mv" }

type MicrobiologyEvent struct {
	RowID              int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID          *int64     `gorm:"column:subject_id"`
	HadmID             *int64     `gorm:"column:hadm_id"`
	ChartDate          *time.Time `gorm:"column:chartdate;type:date"`
	ChartTime          *time.Time `gorm:"column:charttime"`
	SpecItemID         *int64     `gorm:"column:spec_itemid"`
	SpecTypeDesc       *string    `gorm:"column:spec_type_desc"`
	OrgItemID          *int64     `gorm:"column:org_itemid"`
	OrgName            *string    `gorm:"column:org_name"`
	IsolateNum         *int64     `gorm:"column:isolate_num"`
	ABItemID           *int64     `gorm:"column:ab_itemid"`
	ABName             *string    `gorm:"column:ab_name"`
	DilutionText       *string    `gorm:"column:dilution_text"`
	DilutionComparison *string    `gorm:"column:dilution_comparison"`
	DilutionValue      *float64   `gorm:"column:dilution_value"`
	Interpretation     *string    `gorm:"column:interpretation"`
}

func (MicrobiologyEvent) TableName() string { return "bronze.microbiologyevents" }

type NoteEvent struct {
	RowID       int64      `gorm:"primaryKey;autoIncrement:false;column:row_id"`
	SubjectID   *int64     `gorm:"column:subject_id"`
	HadmID      *int64     `gorm:"column:hadm_id"`
	ChartDate   *time.Time `gorm:"column:chartdate"`
	ChartTime   *time.Time `gorm:"column:charttime"`
	StoreTime   *time.Time `gorm:"column:storetime"`
	Category    *string    `gorm:"column:category"`
	Description *string    `gorm:"column:description"`
	CGID        *int64     `gorm:"column:cgid"`
	IsError     *string    `gorm:"column:iserror"`
	Text        *string    `gorm:"column:text;type:text"`
}

func (NoteEvent) TableName() string { return "bronze.noteevents" }
