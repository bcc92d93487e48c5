package textproc

// Static lexical corrections applied via substring replacement. Keys and
// values carry surrounding spaces so only whole words match; keys are
// lowercase, so capitalized occurrences are left for the capitalization
// stage to handle.
var commonCorrections = []correction{
	{" dont ", " don't "},
	{" cant ", " can't "},
	{" wont ", " won't "},
	{" isnt ", " isn't "},
	{" arent ", " aren't "},
	{" wasnt ", " wasn't "},
	{" werent ", " weren't "},
	{" hasnt ", " hasn't "},
	{" havent ", " haven't "},
	{" hadnt ", " hadn't "},
	{" shouldnt ", " shouldn't "},
	{" couldnt ", " couldn't "},
	{" wouldnt ", " wouldn't "},
	{" mustnt ", " mustn't "},
	{" neednt ", " needn't "},
	{" its ", " it's "},
	{" alot ", " a lot "},
	{" incase ", " in case "},
	{" eachother ", " each other "},
	{" a i ", " AI "},
	{" i t ", " IT "},
	{" u i ", " UI "},
	{" u x ", " UX "},
	{" a p i ", " API "},
	{" c e o ", " CEO "},
	{" c t o ", " CTO "},
	{" h r ", " HR "},
	{" p r ", " PR "},
}

type correction struct {
	mistake string
	fixed   string
}

// Domain-term corrections keyed by domain tag. Terms are matched
// case-insensitively on word boundaries and replaced individually; the
// surrounding text keeps its case.
var domainCorrections = map[string]map[string]string{
	"medical": {
		"ecg":     "ECG",
		"ekg":     "EKG",
		"mri":     "MRI",
		"ct scan": "CT scan",
		"x ray":   "X-ray",
		"bp":      "BP",
		"icu":     "ICU",
	},
	"legal": {
		"llc":       "LLC",
		"ip":        "IP",
		"nda":       "NDA",
		"v.":        "v.",
		"subpoena":  "subpoena",
		"deposition": "deposition",
	},
	"technical": {
		"api":        "API",
		"sql":        "SQL",
		"http":       "HTTP",
		"json":       "JSON",
		"cpu":        "CPU",
		"gpu":        "GPU",
		"javascript": "JavaScript",
		"github":     "GitHub",
	},
}

// Disfluency stop-set. Two-word phrases are checked before single words.
var disfluencies = map[string]struct{}{
	"um":       {},
	"uh":       {},
	"er":       {},
	"ah":       {},
	"you know": {},
	"sort of":  {},
	"kind of":  {},
	"i mean":   {},
	"basically": {},
	"actually": {},
	"literally": {},
	"mm-hmm":   {},
	"uh-huh":   {},
}

var dayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Spoken number words mapped to digits, up to "thousand".
var numberWords = []correction{
	{"zero", "0"}, {"one", "1"}, {"two", "2"}, {"three", "3"}, {"four", "4"},
	{"five", "5"}, {"six", "6"}, {"seven", "7"}, {"eight", "8"}, {"nine", "9"},
	{"ten", "10"}, {"eleven", "11"}, {"twelve", "12"}, {"thirteen", "13"},
	{"fourteen", "14"}, {"fifteen", "15"}, {"sixteen", "16"}, {"seventeen", "17"},
	{"eighteen", "18"}, {"nineteen", "19"}, {"twenty", "20"}, {"thirty", "30"},
	{"forty", "40"}, {"fifty", "50"}, {"sixty", "60"}, {"seventy", "70"},
	{"eighty", "80"}, {"ninety", "90"}, {"hundred", "100"}, {"thousand", "1000"},
}
