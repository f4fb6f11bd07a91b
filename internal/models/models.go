// package models defines the data model for the body-composition tracker
package models

// Measurement is a single body-composition reading, stored as one spreadsheet row in column order.
type Measurement struct {
	Date     string  `json:"date"`     // Date is free text, conventionally YY/MM/DD
	Weight   float64 `json:"weight"`   // Weight in kg
	BMI      float64 `json:"bmi"`      // BMI index
	Fat      float64 `json:"fat"`      // Fat is body fat in percent
	Muscle   float64 `json:"muscle"`   // Muscle mass in kg
	Bone     float64 `json:"bone"`     // Bone is estimated bone mass in kg
	Visceral float64 `json:"visceral"` // Visceral fat rating
	Calories float64 `json:"calories"` // Calories is basal metabolic rate in kcal
	Age      int     `json:"age"`      // Age is the metabolic age in years
}

// MetricKey names one numeric column of a [Measurement].
type MetricKey string

const (
	MetricWeight   MetricKey = "weight"
	MetricBMI      MetricKey = "bmi"
	MetricFat      MetricKey = "fat"
	MetricMuscle   MetricKey = "muscle"
	MetricBone     MetricKey = "bone"
	MetricVisceral MetricKey = "visceral"
	MetricCalories MetricKey = "calories"
	MetricAge      MetricKey = "age"
)

// Metric describes how a numeric column is labelled and drawn.
type Metric struct {
	Key         MetricKey
	Label       string
	Color       string // Color is a hex RGB string usable by lipgloss
	Placeholder string // Placeholder is the example value shown in empty inputs
}

// Metrics lists every numeric column in sheet order.
var Metrics = []Metric{
	{Key: MetricWeight, Label: "Weight (kg)", Color: "#3b82f6", Placeholder: "65.0"},
	{Key: MetricBMI, Label: "BMI", Color: "#6366f1", Placeholder: "21.0"},
	{Key: MetricFat, Label: "Body fat (%)", Color: "#f59e0b", Placeholder: "17.0"},
	{Key: MetricMuscle, Label: "Muscle (kg)", Color: "#ec4899", Placeholder: "50.0"},
	{Key: MetricBone, Label: "Bone mass (kg)", Color: "#8b5cf6", Placeholder: "2.8"},
	{Key: MetricVisceral, Label: "Visceral fat", Color: "#ef4444", Placeholder: "5"},
	{Key: MetricCalories, Label: "BMR (kcal)", Color: "#10b981", Placeholder: "1500"},
	{Key: MetricAge, Label: "Metabolic age", Color: "#64748b", Placeholder: "35"},
}

// LookupMetric returns the [Metric] registered under key.
func LookupMetric(key MetricKey) (Metric, bool) {
	for _, m := range Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the numeric column named by key, and false for an unknown key.
func (m Measurement) Value(key MetricKey) (float64, bool) {
	switch key {
	case MetricWeight:
		return m.Weight, true
	case MetricBMI:
		return m.BMI, true
	case MetricFat:
		return m.Fat, true
	case MetricMuscle:
		return m.Muscle, true
	case MetricBone:
		return m.Bone, true
	case MetricVisceral:
		return m.Visceral, true
	case MetricCalories:
		return m.Calories, true
	case MetricAge:
		return float64(m.Age), true
	default:
		return 0, false
	}
}

// Profile is the signed-in identity as reported by Google.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"` // Picture is the avatar URL
}
