package silver

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
)

func strp(s string) *string { return &s }
func i64p(v int64) *int64 { return &v }
func f64p(v float64) *float64 { return &v }
func boolp(v bool) *bool { return &v }
func tsp(s string) *time.Time {
	t, err := time.Parse(bronze.DateTimeLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestTransformPatientGenderFilter(t *testing.T) {
	tests := []struct {
		gender *string
		want   string
		drop   bool
	}{
		{strp("M"), "M", false},
		{strp("m"), "M", false},
		{strp(" f "), "F", false},
		{strp("X"), "", true},
		{strp(""), "", true},
		{nil, "", true},
	}
	for _, tt := range tests {
		got, err := TransformPatient(&bronze.Patient{SubjectID: 1, Gender: tt.gender})
		if tt.drop {
			require.ErrorIs(t, err, ErrDropped)
			assert.Nil(t, got)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Gender)
	}
}

func TestTransformPatientDates(t *testing.T) {
	got, err := TransformPatient(&bronze.Patient{
		SubjectID: 10006,
		Gender:    strp("F"),
		DOB:       tsp("2094-03-05 08:15:00"),
		DODHosp:   tsp("2165-08-12 00:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2094, 3, 5, 0, 0, 0, 0, time.UTC), *got.DateOfBirth)
	assert.Nil(t, got.DateOfDeath)
	assert.True(t, got.IsDeceased)
	assert.Nil(t, got.DOBShiftYears)
}

// scanTimestamptz sends a value through the driver's binary timestamptz codec
// the way a bronze row read from postgres arrives.
func scanTimestamptz(t *testing.T, v *time.Time) *time.Time {
	t.Helper()
	m := pgtype.NewMap()
	buf, err := m.Encode(pgtype.TimestamptzOID, pgtype.BinaryFormatCode, *v, nil)
	require.NoError(t, err)
	out, err := pgtype.TimestamptzCodec{}.DecodeDatabaseSQLValue(m, pgtype.TimestamptzOID, pgtype.BinaryFormatCode, buf)
	require.NoError(t, err)
	scanned, ok := out.(time.Time)
	require.True(t, ok)
	return &scanned
}

func TestTransformPatientDatesIgnoreLocalZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("zoneinfo not available")
	}
	prev := time.Local
	time.Local = la
	t.Cleanup(func() { time.Local = prev })

	dob, ok := bronze.Parse("dob", "2094-03-05 00:00:00", bronze.KindDateTime).(time.Time)
	require.True(t, ok)
	dod, ok := bronze.Parse("dod", "2165-08-12 00:00:00", bronze.KindDateTime).(time.Time)
	require.True(t, ok)

	got, err := TransformPatient(&bronze.Patient{
		SubjectID: 10006,
		Gender:    strp("F"),
		DOB:       scanTimestamptz(t, &dob),
		DOD:       scanTimestamptz(t, &dod),
	})
	require.NoError(t, err)
	assert.Equal(t, "2094-03-05", got.DateOfBirth.Format(bronze.DateLayout))
	assert.Equal(t, "2165-08-12", got.DateOfDeath.Format(bronze.DateLayout))
}

func TestTransformAdmissionLengthOfStay(t *testing.T) {
	got, err := TransformAdmission(&bronze.Admission{
		HadmID:             100001,
		AdmitTime:          tsp("2020-01-01 10:00:00"),
		DischTime:          tsp("2020-01-05 14:30:00"),
		HospitalExpireFlag: boolp(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.5, *got.LOSHours)
	assert.Equal(t, 4.19, *got.LOSDays)
	assert.True(t, got.HospitalExpireFlag)
}

func TestTransformAdmissionNullPropagation(t *testing.T) {
	got, err := TransformAdmission(&bronze.Admission{
		HadmID:    100002,
		AdmitTime: tsp("2020-01-01 10:00:00"),
	})
	require.NoError(t, err)
	assert.Nil(t, got.LOSHours)
	assert.Nil(t, got.LOSDays)
	assert.False(t, got.HospitalExpireFlag)

	got, err = TransformAdmission(&bronze.Admission{HadmID: 100003, HospitalExpireFlag: boolp(false)})
	require.NoError(t, err)
	assert.False(t, got.HospitalExpireFlag)
}

func TestTransformICUStay(t *testing.T) {
	got, err := TransformICUStay(&bronze.ICUStay{
		ICUStayID: 200001,
		InTime:    tsp("2020-01-01 00:00:00"),
		OutTime:   tsp("2020-01-02 12:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 36.0, *got.LOSICUHours)
	assert.Equal(t, 1.5, *got.LOSICUDays)

	got, err = TransformICUStay(&bronze.ICUStay{ICUStayID: 200002, OutTime: tsp("2020-01-02 12:00:00")})
	require.NoError(t, err)
	assert.Nil(t, got.LOSICUHours)
}

func TestCaregiverTransformer(t *testing.T) {
	transform := CaregiverTransformer(terminology.DefaultCatalog())

	got, err := transform(&bronze.Caregiver{CGID: 14010, Label: strp(" RN "), Description: strp(" Registered Nurse ")})
	require.NoError(t, err)
	assert.Equal(t, "RN", *got.Label)
	assert.Equal(t, "Registered Nurse", *got.Description)
	assert.Equal(t, "Nursing", *got.RoleCategory)

	got, err = transform(&bronze.Caregiver{CGID: 14011, Label: strp("Co-RN")})
	require.NoError(t, err)
	assert.Equal(t, terminology.OtherCategory, *got.RoleCategory)

	got, err = transform(&bronze.Caregiver{CGID: 14012})
	require.NoError(t, err)
	assert.Nil(t, got.RoleCategory)

	_, err = transform(&bronze.Caregiver{CGID: 0, Label: strp("MD")})
	require.ErrorIs(t, err, ErrDropped)
}

func TestLabEventAbnormalFlag(t *testing.T) {
	transform := LabEventTransformer(terminology.DefaultCatalog())

	tests := []struct {
		flag *string
		want bool
	}{
		{strp("H"), true},
		{strp("abnormal"), true},
		{strp("delta"), true},
		{strp("normal"), false},
		{nil, false},
	}
	for _, tt := range tests {
		got, err := transform(&bronze.LabEvent{RowID: 1, Flag: tt.flag})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.IsAbnormal)
	}
}

func TestLabEventNumericFallback(t *testing.T) {
	transform := LabEventTransformer(terminology.DefaultCatalog())

	tests := []struct {
		value    *string
		valueNum *float64
		want     *float64
	}{
		{strp("5.5"), nil, f64p(5.5)},
		{strp(">10"), nil, f64p(10)},
		{strp("<0.5"), nil, f64p(0.5)},
		{strp(">=7"), nil, f64p(7)},
		{strp("<= 3"), nil, f64p(3)},
		{strp("~2"), nil, f64p(2)},
		{strp("NEGATIVE"), nil, nil},
		{strp("9"), f64p(8), f64p(8)},
		{nil, nil, nil},
	}
	for _, tt := range tests {
		got, err := transform(&bronze.LabEvent{RowID: 1, Value: tt.value, ValueNum: tt.valueNum})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.ValueNum)
	}
}

func TestTransformPrescription(t *testing.T) {
	got, err := TransformPrescription(&bronze.Prescription{
		RowID:       1,
		StartDate:   tsp("2020-01-01 00:00:00"),
		EndDate:     tsp("2020-01-03 12:00:00"),
		DoseValRx:   strp("1,000"),
		FormValDisp: strp("1-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *got.DoseValRx)
	assert.Nil(t, got.FormValDisp)
	assert.Equal(t, 2.5, *got.DurationDays)

	got, err = TransformPrescription(&bronze.Prescription{RowID: 2, DoseValRx: strp("NaN")})
	require.NoError(t, err)
	assert.Nil(t, got.DoseValRx)
	assert.Nil(t, got.DurationDays)
}

func TestTransferICUFlag(t *testing.T) {
	transform := TransferTransformer(terminology.DefaultCatalog())

	tests := []struct {
		prev, curr *string
		want       bool
	}{
		{nil, strp("MICU"), true},
		{strp("NWARD"), nil, true},
		{nil, strp("NWARD"), true},
		{strp("FLOOR"), strp(" nward "), true},
		{strp("FLOOR"), strp("FLOOR"), false},
		{nil, nil, false},
	}
	for _, tt := range tests {
		got, err := transform(&bronze.Transfer{RowID: 1, PrevCareUnit: tt.prev, CurrCareUnit: tt.curr})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.IsICUTransfer)
	}

	got, err := transform(&bronze.Transfer{
		RowID:   2,
		InTime:  tsp("2020-01-01 10:00:00"),
		OutTime: tsp("2020-01-01 11:20:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.33, *got.DurationHours)

	got, err = transform(&bronze.Transfer{RowID: 3, InTime: tsp("2020-01-01 10:00:00")})
	require.NoError(t, err)
	assert.Nil(t, got.DurationHours)

	got, err = transform(&bronze.Transfer{RowID: 4, OutTime: tsp("2020-01-01 11:20:00")})
	require.NoError(t, err)
	assert.Nil(t, got.DurationHours)
}

func TestTransformProcedureEvent(t *testing.T) {
	got, err := TransformProcedureEvent(&bronze.ProcedureEventMV{
		RowID:             1,
		StartTime:         tsp("2020-01-01 10:00:00"),
		EndTime:           tsp("2020-01-01 12:30:00"),
		StatusDescription: strp("FinishedRunning"),
	})
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.False(t, got.IsCanceled)
	assert.Equal(t, 2.5, *got.DurationHours)

	got, err = TransformProcedureEvent(&bronze.ProcedureEventMV{
		RowID:             2,
		EndTime:           tsp("2020-01-01 12:30:00"),
		StatusDescription: strp("Cancelled"),
	})
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.True(t, got.IsCanceled)
	assert.Nil(t, got.DurationHours)

	got, err = TransformProcedureEvent(&bronze.ProcedureEventMV{RowID: 3, StartTime: tsp("2020-01-01 10:00:00")})
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.False(t, got.IsCanceled)
}

func TestTransformMicrobiologyEvent(t *testing.T) {
	got, err := TransformMicrobiologyEvent(&bronze.MicrobiologyEvent{
		RowID:          1,
		OrgName:        strp("STAPH AUREUS COAG +"),
		Interpretation: strp("r"),
	})
	require.NoError(t, err)
	assert.True(t, got.IsPositive)
	assert.True(t, got.IsResistant)

	got, err = TransformMicrobiologyEvent(&bronze.MicrobiologyEvent{
		RowID:          2,
		OrgName:        strp("   "),
		Interpretation: strp("S"),
	})
	require.NoError(t, err)
	assert.False(t, got.IsPositive)
	assert.False(t, got.IsResistant)
}

func TestTransformOutputEventPassesThrough(t *testing.T) {
	in := &bronze.OutputEvent{
		RowID:     7,
		SubjectID: i64p(10006),
		ItemID:    i64p(40055),
		Value:     f64p(250),
		ValueUOM:  strp("ml"),
	}
	got, err := TransformOutputEvent(in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.RowID)
	assert.Equal(t, in.Value, got.Value)
	assert.Equal(t, in.ValueUOM, got.ValueUOM)
}

func TestInputEventBolusRules(t *testing.T) {
	cv, err := TransformInputEventCV(&bronze.InputEventCV{RowID: 5, Rate: f64p(0), OrderID: i64p(1)})
	require.NoError(t, err)
	assert.True(t, cv.IsBolus)

	cv, err = TransformInputEventCV(&bronze.InputEventCV{RowID: 5, Rate: f64p(12.5)})
	require.NoError(t, err)
	assert.False(t, cv.IsBolus)
	assert.Nil(t, cv.StartTime)
	assert.Nil(t, cv.DurationHours)

	mv, err := TransformInputEventMV(&bronze.InputEventMV{
		RowID:     5,
		Rate:      f64p(0),
		OrderID:   i64p(99),
		StartTime: tsp("2020-01-01 10:00:00"),
		EndTime:   tsp("2020-01-01 10:45:00"),
	})
	require.NoError(t, err)
	assert.False(t, mv.IsBolus)
	assert.Equal(t, mv.StartTime, mv.ChartTime)
	assert.Equal(t, 0.75, *mv.DurationHours)

	mv, err = TransformInputEventMV(&bronze.InputEventMV{RowID: 5, Rate: f64p(30)})
	require.NoError(t, err)
	assert.True(t, mv.IsBolus)

	mv, err = TransformInputEventMV(&bronze.InputEventMV{
		RowID:     6,
		OrderID:   i64p(99),
		StartTime: tsp("2020-01-01 10:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, tsp("2020-01-01 10:00:00"), mv.ChartTime)
	assert.Nil(t, mv.EndTime)
	assert.Nil(t, mv.DurationHours)
	assert.False(t, mv.IsBolus)
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 4.19, round2(4.1875))
	assert.Equal(t, -4.19, round2(-4.1875))
	assert.Equal(t, 1.0, round2(0.999))
}

func TestErrDroppedWrapping(t *testing.T) {
	_, err := TransformPatient(&bronze.Patient{Gender: strp("U")})
	assert.True(t, errors.Is(err, ErrDropped))
	assert.Contains(t, err.Error(), `"U"`)
}
