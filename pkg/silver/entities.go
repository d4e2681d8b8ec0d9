package silver

import (
	"fmt"
	"strings"

	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
)

func TransformPatient(b *bronze.Patient) (*Patient, error) {
	gender := upper(b.Gender)
	if gender != "M" && gender != "F" {
		return nil, fmt.Errorf("%w: gender %q", ErrDropped, gender)
	}
	return &Patient{
		SubjectID:   b.SubjectID,
		Gender:      gender,
		DateOfBirth: dateOnly(b.DOB),
		DateOfDeath: dateOnly(b.DOD),
		IsDeceased:  b.DOD != nil || b.DODHosp != nil,
	}, nil
}

func TransformAdmission(b *bronze.Admission) (*Admission, error) {
	losDays, losHours := stayLength(b.AdmitTime, b.DischTime)
	return &Admission{
		HadmID:             b.HadmID,
		SubjectID:          b.SubjectID,
		AdmissionType:      b.AdmissionType,
		AdmissionLocation:  b.AdmissionLocation,
		DischargeLocation:  b.DischargeLocation,
		AdmitTime:          b.AdmitTime,
		DischTime:          b.DischTime,
		EDRegTime:          b.EDRegTime,
		EDOutTime:          b.EDOutTime,
		LOSDays:            losDays,
		LOSHours:           losHours,
		Diagnosis:          b.Diagnosis,
		HospitalExpireFlag: b.HospitalExpireFlag != nil && *b.HospitalExpireFlag,
		Insurance:          b.Insurance,
		Language:           b.Language,
		Religion:           b.Religion,
		MaritalStatus:      b.MaritalStatus,
		Ethnicity:          b.Ethnicity,
	}, nil
}

func TransformICUStay(b *bronze.ICUStay) (*ICUStay, error) {
	losDays, losHours := stayLength(b.InTime, b.OutTime)
	return &ICUStay{
		ICUStayID:     b.ICUStayID,
		SubjectID:     b.SubjectID,
		HadmID:        b.HadmID,
		FirstCareUnit: b.FirstCareUnit,
		LastCareUnit:  b.LastCareUnit,
		FirstWardID:   b.FirstWardID,
		LastWardID:    b.LastWardID,
		InTime:        b.InTime,
		OutTime:       b.OutTime,
		LOSICUDays:    losDays,
		LOSICUHours:   losHours,
	}, nil
}

func CaregiverTransformer(cat *terminology.Catalog) TransformFunc[bronze.Caregiver, Caregiver] {
	return func(b *bronze.Caregiver) (*Caregiver, error) {
		if b.CGID == 0 {
			return nil, fmt.Errorf("%w: caregiver id missing", ErrDropped)
		}
		label := trimmed(b.Label)
		return &Caregiver{
			CGID:         b.CGID,
			Label:        label,
			Description:  trimmed(b.Description),
			RoleCategory: cat.RoleCategory(label),
		}, nil
	}
}

func LabEventTransformer(cat *terminology.Catalog) TransformFunc[bronze.LabEvent, LabEvent] {
	return func(b *bronze.LabEvent) (*LabEvent, error) {
		valueNum := b.ValueNum
		if valueNum == nil {
			valueNum = parseLabNumeric(b.Value)
		}
		return &LabEvent{
			RowID:      b.RowID,
			SubjectID:  b.SubjectID,
			HadmID:     b.HadmID,
			ItemID:     b.ItemID,
			ChartTime:  b.ChartTime,
			Value:      b.Value,
			ValueNum:   valueNum,
			ValueUOM:   b.ValueUOM,
			Flag:       b.Flag,
			IsAbnormal: cat.IsAbnormalFlag(b.Flag),
		}, nil
	}
}

func TransformPrescription(b *bronze.Prescription) (*Prescription, error) {
	return &Prescription{
		RowID:           b.RowID,
		SubjectID:       b.SubjectID,
		HadmID:          b.HadmID,
		ICUStayID:       b.ICUStayID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		DrugType:        b.DrugType,
		Drug:            b.Drug,
		DrugNameGeneric: b.DrugNameGeneric,
		FormularyDrugCD: b.FormularyDrugCD,
		DoseValRx:       parseDose(b.DoseValRx),
		DoseUnitRx:      b.DoseUnitRx,
		FormValDisp:     parseDose(b.FormValDisp),
		FormUnitDisp:    b.FormUnitDisp,
		Route:           b.Route,
		DurationDays:    daysBetween(b.StartDate, b.EndDate),
	}, nil
}

func TransferTransformer(cat *terminology.Catalog) TransformFunc[bronze.Transfer, Transfer] {
	return func(b *bronze.Transfer) (*Transfer, error) {
		return &Transfer{
			RowID:         b.RowID,
			SubjectID:     b.SubjectID,
			HadmID:        b.HadmID,
			ICUStayID:     b.ICUStayID,
			EventType:     b.EventType,
			PrevCareUnit:  b.PrevCareUnit,
			CurrCareUnit:  b.CurrCareUnit,
			PrevWardID:    b.PrevWardID,
			CurrWardID:    b.CurrWardID,
			InTime:        b.InTime,
			OutTime:       b.OutTime,
			DurationHours: hoursBetween(b.InTime, b.OutTime),
			IsICUTransfer: cat.IsICUUnit(b.CurrCareUnit) || cat.IsICUUnit(b.PrevCareUnit),
		}, nil
	}
}

func TransformOutputEvent(b *bronze.OutputEvent) (*OutputEvent, error) {
	return &OutputEvent{
		RowID:     b.RowID,
		SubjectID: b.SubjectID,
		HadmID:    b.HadmID,
		ICUStayID: b.ICUStayID,
		ItemID:    b.ItemID,
		ChartTime: b.ChartTime,
		Value:     b.Value,
		ValueUOM:  b.ValueUOM,
		CGID:      b.CGID,
	}, nil
}

func TransformProcedureEvent(b *bronze.ProcedureEventMV) (*ProcedureEvent, error) {
	canceled := strings.Contains(upper(b.StatusDescription), "CANCEL")
	return &ProcedureEvent{
		RowID:             b.RowID,
		SubjectID:         b.SubjectID,
		HadmID:            b.HadmID,
		ICUStayID:         b.ICUStayID,
		ItemID:            b.ItemID,
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		Value:             b.Value,
		ValueUOM:          b.ValueUOM,
		Location:          b.Location,
		StatusDescription: b.StatusDescription,
		IsCompleted:       !canceled && b.EndTime != nil,
		IsCanceled:        canceled,
		DurationHours:     hoursBetween(b.StartTime, b.EndTime),
	}, nil
}

func TransformMicrobiologyEvent(b *bronze.MicrobiologyEvent) (*MicrobiologyEvent, error) {
	return &MicrobiologyEvent{
		RowID:          b.RowID,
		SubjectID:      b.SubjectID,
		HadmID:         b.HadmID,
		ChartDate:      b.ChartDate,
		ChartTime:      b.ChartTime,
		SpecItemID:     b.SpecItemID,
		SpecTypeDesc:   b.SpecTypeDesc,
		OrgItemID:      b.OrgItemID,
		OrgName:        b.OrgName,
		ABItemID:       b.ABItemID,
		ABName:         b.ABName,
		DilutionText:   b.DilutionText,
		Interpretation: b.Interpretation,
		IsPositive:     trimmed(b.OrgName) != nil,
		IsResistant:    upper(b.Interpretation) == "R",
	}, nil
}

// CareVue charts a single timestamp; an event with no rate is a bolus.
func TransformInputEventCV(b *bronze.InputEventCV) (*InputEvent, error) {
	return &InputEvent{
		SourceSystem: SourceCareVue,
		RowID:        b.RowID,
		SubjectID:    b.SubjectID,
		HadmID:       b.HadmID,
		ICUStayID:    b.ICUStayID,
		ItemID:       b.ItemID,
		ChartTime:    b.ChartTime,
		Amount:       b.Amount,
		AmountUOM:    b.AmountUOM,
		Rate:         b.Rate,
		RateUOM:      b.RateUOM,
		CGID:         b.CGID,
		IsBolus:      b.Rate == nil || *b.Rate == 0,
	}, nil
}

// MetaVision charts intervals; an event with no order is a bolus.
func TransformInputEventMV(b *bronze.InputEventMV) (*InputEvent, error) {
	return &InputEvent{
		SourceSystem:  SourceMetaVision,
		RowID:         b.RowID,
		SubjectID:     b.SubjectID,
		HadmID:        b.HadmID,
		ICUStayID:     b.ICUStayID,
		ItemID:        b.ItemID,
		ChartTime:     b.StartTime,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Amount:        b.Amount,
		AmountUOM:     b.AmountUOM,
		Rate:          b.Rate,
		RateUOM:       b.RateUOM,
		CGID:          b.CGID,
		DurationHours: hoursBetween(b.StartTime, b.EndTime),
		IsBolus:       b.OrderID == nil,
	}, nil
}
