package prediction

import (
	"math"
	"strings"

	"github.com/edupulse/dropout-risk-api/internal/record"
)

// alias maps an external-facing record key to the internal feature name the
// classifier was trained on. The table is ordered; the first alias whose
// target matches the feature and whose key is present in the record wins.
type alias struct {
	key    string
	target string
}

var aliasTable = []alias{
	// Engagement metrics
	{"attendance_percentage", "attendance_percentage"},
	{"assignment_submission_rate", "assignment_submission_rate"},
	{"library_visits_monthly", "library_visits_monthly"},
	{"lms_last_login_days", "lms_last_login_days"},
	{"extracurricular_participation", "extracurricular_participation"},

	// Financial
	{"family_income", "family_income"},
	{"fee_payment_delay_months", "fee_payment_delay_months"},

	// Support & logistics
	{"counselor_visits", "counselor_visits"},
	{"distance_from_college", "distance_from_college_km"},
	{"distance_from_college_km", "distance_from_college_km"},
	{"hostel_day_scholar", "hostel_day_scholar"},

	// Academic (curricular units)
	{"units_approved_sem1", "Curricular units 1st sem (approved)"},
	{"units_approved_sem2", "Curricular units 2nd sem (approved)"},
	{"units_enrolled_sem1", "Curricular units 1st sem (enrolled)"},
	{"units_enrolled_sem2", "Curricular units 2nd sem (enrolled)"},
	{"cgpa_semester1", "Curricular units 1st sem (grade)"},
	{"cgpa_semester2", "Curricular units 2nd sem (grade)"},

	// Original enrollment features
	{"age", "Age at enrollment"},
	{"scholarship_holder", "Scholarship holder"},
	{"tuition_fees_up_to_date", "Tuition fees up to date"},
	{"debtor", "Debtor"},
	{"gender", "Gender"},
	{"marital_status", "Marital status"},
}

const housingFeature = "hostel_day_scholar"

// NoteKind classifies how a feature value was obtained when it did not come
// straight from the record.
type NoteKind string

const (
	// NoteDefaulted marks a feature filled by the default policy.
	NoteDefaulted NoteKind = "defaulted"
	// NoteEncoderFallback marks a categorical encoding failure resolved to 0.
	NoteEncoderFallback NoteKind = "encoder_fallback"
)

// Note is a diagnostic attached to a resolved vector. Notes let callers tell
// defaulted values apart from directly sourced ones without changing the
// lenient resolution behavior.
type Note struct {
	Feature string
	Kind    NoteKind
}

// Resolve maps a raw record into the ordered, fully numeric, pre-scaling
// feature vector the classifier expects. It never fails: unresolvable
// features fall back to the default policy and are reported as notes.
func Resolve(rec record.Record, bundle *Bundle) ([]float64, []Note) {
	names := bundle.FeatureNames()
	vector := make([]float64, len(names))
	notes := make([]Note, 0)

	for i, feature := range names {
		value, found := sourceValue(rec, feature)
		if !found {
			value = defaultValue(feature, rec)
			notes = append(notes, Note{Feature: feature, Kind: NoteDefaulted})
		}
		vector[i] = Coerce(value, feature)
	}

	// Housing is categorical: when an encoder was trained for it, the original
	// raw value is encoded instead of the coerced one. Encoding failures fall
	// back to 0 rather than failing the prediction.
	if encoder, ok := bundle.Encoder(housingFeature); ok {
		for i, feature := range names {
			if feature != housingFeature {
				continue
			}
			encoded, fallback := encodeHousing(rec, encoder)
			vector[i] = encoded
			if fallback {
				notes = append(notes, Note{Feature: feature, Kind: NoteEncoderFallback})
			}
		}
	}

	// Last-resort safety net: the vector must always be classifier-ready.
	for i, value := range vector {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			vector[i] = 0
		}
	}

	return vector, notes
}

// sourceValue finds a non-absent record value for the feature via the alias
// table, then the feature name itself, its normalized form, and the
// underscore-joined form.
func sourceValue(rec record.Record, feature string) (record.Value, bool) {
	for _, a := range aliasTable {
		if a.target == feature && rec.Has(a.key) {
			return rec.Get(a.key), true
		}
	}

	for _, key := range []string{feature, normalizeKey(feature), strings.ReplaceAll(feature, " ", "_")} {
		if rec.Has(key) {
			return rec.Get(key), true
		}
	}

	return record.None(), false
}

func normalizeKey(feature string) string {
	key := strings.ToLower(feature)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "(", "")
	key = strings.ReplaceAll(key, ")", "")
	return key
}

func encodeHousing(rec record.Record, encoder *LabelEncoder) (value float64, fallback bool) {
	raw, present := rec[housingFeature]
	if !present {
		raw = record.Str("Day Scholar")
	}

	switch raw.Kind() {
	case record.Text:
		encoded, err := encoder.Transform(raw.Text())
		if err != nil {
			return 0, true
		}
		return encoded, false
	case record.Number:
		return raw.Float(), false
	case record.Boolean:
		if raw.IsTrue() {
			return 1, false
		}
		return 0, false
	default:
		return 0, true
	}
}

// defaultValue supplies the value for a feature with no source in the record.
// Several defaults derive from other present fields; CGPA on the 0-10 scale is
// doubled into the 0-20 grade scale the training data used.
func defaultValue(feature string, rec record.Record) record.Value {
	gradeSem1 := gradeFromCGPA(rec, "cgpa_semester1", "cgpa_previous")
	gradeSem2 := gradeFromCGPA(rec, "cgpa_semester2", "cgpa_current")

	switch feature {
	case "Curricular units 1st sem (credited)", "Curricular units 2nd sem (credited)",
		"Curricular units 1st sem (without evaluations)", "Curricular units 2nd sem (without evaluations)":
		return record.Num(0)
	case "Curricular units 1st sem (enrolled)":
		return presentOr(rec, "units_enrolled_sem1", 6)
	case "Curricular units 2nd sem (enrolled)":
		return presentOr(rec, "units_enrolled_sem2", 6)
	case "Curricular units 1st sem (evaluations)", "Curricular units 2nd sem (evaluations)":
		return record.Num(6)
	case "Curricular units 1st sem (approved)":
		return presentOr(rec, "units_approved_sem1", 5)
	case "Curricular units 2nd sem (approved)":
		return presentOr(rec, "units_approved_sem2", 5)
	case "Curricular units 1st sem (grade)":
		return record.Num(gradeSem1)
	case "Curricular units 2nd sem (grade)":
		return record.Num(gradeSem2)

	case "Age at enrollment":
		return presentOr(rec, "age", 18)
	case "Admission grade", "Previous qualification (grade)":
		return record.Num(120)

	case "Displaced":
		return record.Num(0)
	case "Gender":
		return record.Num(defaultGender(rec))
	case "Scholarship holder":
		return record.Num(boolDefault(rec, "scholarship_holder", false))
	case "Tuition fees up to date":
		return record.Num(boolDefault(rec, "tuition_fees_up_to_date", true))
	case "Debtor":
		return record.Num(boolDefault(rec, "debtor", false))
	case "Marital status", "Daytime/evening attendance":
		return record.Num(1)

	case housingFeature:
		return record.Num(defaultHousing(rec))

	case "attendance_percentage":
		return presentOr(rec, "attendance_percentage", 75)
	case "assignment_submission_rate":
		return presentOr(rec, "assignment_submission_rate", 70)
	case "library_visits_monthly":
		return presentOr(rec, "library_visits_monthly", 2)
	case "lms_last_login_days":
		return presentOr(rec, "lms_last_login_days", 3)
	case "extracurricular_participation":
		return record.Num(defaultExtracurricular(rec))

	case "family_income":
		return presentOr(rec, "family_income", 500000)
	case "fee_payment_delay_months":
		return presentOr(rec, "fee_payment_delay_months", 0)

	case "counselor_visits":
		return presentOr(rec, "counselor_visits", 0)
	case "distance_from_college_km":
		if rec.Has("distance_from_college") {
			return rec.Get("distance_from_college")
		}
		return presentOr(rec, "distance_from_college_km", 15)
	}

	return record.Num(0)
}

// presentOr returns the raw record value when present so the coercion rules
// still apply to it, otherwise the numeric default.
func presentOr(rec record.Record, key string, def float64) record.Value {
	if rec.Has(key) {
		return rec.Get(key)
	}
	return record.Num(def)
}

func gradeFromCGPA(rec record.Record, primary, secondary string) float64 {
	cgpa := 7.0
	if rec.Has(primary) {
		cgpa = Coerce(rec.Get(primary), primary)
	} else if rec.Has(secondary) {
		cgpa = Coerce(rec.Get(secondary), secondary)
	}

	if cgpa <= 10 {
		return cgpa * 2
	}
	return cgpa
}

func defaultGender(rec record.Record) float64 {
	v, present := rec["gender"]
	if !present {
		return 1
	}
	switch v.Kind() {
	case record.Text:
		if contains([]string{"Male", "M", "m", "male"}, v.Text()) || v.Text() == "1" {
			return 1
		}
	case record.Number:
		if v.Float() == 1 {
			return 1
		}
	case record.Boolean:
		if v.IsTrue() {
			return 1
		}
	}
	return 0
}

func defaultHousing(rec record.Record) float64 {
	v, present := rec[housingFeature]
	if !present {
		return 0
	}
	switch v.Kind() {
	case record.Text:
		if contains([]string{"Day Scholar", "day scholar", "Day scholar", "0"}, v.Text()) {
			return 0
		}
	case record.Number:
		if v.Float() == 0 {
			return 0
		}
	case record.Boolean:
		if !v.IsTrue() {
			return 0
		}
	}
	return 1
}

// defaultExtracurricular accepts a narrower truthy set than the other binary
// flags: only true, 1, and "1" count as participation.
func defaultExtracurricular(rec record.Record) float64 {
	v, present := rec["extracurricular_participation"]
	if !present {
		return 0
	}
	switch v.Kind() {
	case record.Boolean:
		if v.IsTrue() {
			return 1
		}
	case record.Number:
		if v.Float() == 1 {
			return 1
		}
	case record.Text:
		if v.Text() == "1" {
			return 1
		}
	}
	return 0
}

func boolDefault(rec record.Record, key string, def bool) float64 {
	v, present := rec[key]
	if !present {
		if def {
			return 1
		}
		return 0
	}
	if isAffirmative(v) {
		return 1
	}
	return 0
}

// isAffirmative matches the literal truthy spellings the training pipeline
// accepted for binary flags.
func isAffirmative(v record.Value) bool {
	switch v.Kind() {
	case record.Boolean:
		return v.IsTrue()
	case record.Number:
		return v.Float() == 1
	case record.Text:
		return contains([]string{"1", "true", "True", "yes", "Yes"}, v.Text())
	}
	return false
}

// isNegative matches the literal falsy spellings. Absent values are neither
// affirmative nor negative; callers decide the per-field default.
func isNegative(v record.Value) bool {
	switch v.Kind() {
	case record.Boolean:
		return !v.IsTrue()
	case record.Number:
		return v.Float() == 0
	case record.Text:
		return contains([]string{"0", "false", "False", "no", "No"}, v.Text())
	}
	return false
}
