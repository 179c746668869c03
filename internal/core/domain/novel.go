package domain

// Element id prefixes used by the novel's id generator.
const (
	ChapterPrefix   = "ch"
	SectionPrefix   = "sc"
	CharacterPrefix = "cr"
	LocationPrefix  = "lc"
	ItemPrefix      = "it"
	PlotLinePrefix  = "ac"
)

// Roots of the novel's containment tree.
const (
	ChapterRoot   = "CH_ROOT"
	CharacterRoot = "CR_ROOT"
	LocationRoot  = "LC_ROOT"
	ItemRoot      = "IT_ROOT"
	PlotLineRoot  = "PL_ROOT"
)

// SectionType distinguishes sections in the exported narrative from the rest.
type SectionType int

const (
	// SectionNormal sections belong to the narrative.
	SectionNormal SectionType = 0

	// SectionUnused sections are kept but excluded from the narrative.
	SectionUnused SectionType = 1
)

// String returns the type name.
func (t SectionType) String() string {
	switch t {
	case SectionNormal:
		return "normal"
	case SectionUnused:
		return "unused"
	default:
		return "unknown"
	}
}

// StatusOutline is the status of a section that has not been written yet.
const StatusOutline = 1

// NewSectionsChapterTitle is the title of the chapter that collects
// imported sections without a chapter.
const NewSectionsChapterTitle = "New sections"

// Section is a scene of the novel.
type Section struct {
	Title string
	Desc  string
	Notes string
	Tags  []string

	// Date is an ISO date (YYYY-MM-DD); empty when unset.
	Date string

	// Time is an ISO time (HH:MM:SS); empty when unset.
	Time string

	// Day is a day offset from the novel's reference date, used instead of Date.
	Day *int

	LastsDays    int
	LastsHours   int
	LastsMinutes int

	Characters []string
	Locations  []string
	Items      []string
	PlotLines  []string

	Type   SectionType
	Status int
}

// Chapter groups sections.
type Chapter struct {
	Title   string
	Type    int
	IsTrash bool
}

// Character is a person appearing in sections.
type Character struct {
	Title     string
	FullName  string
	Notes     string
	BirthDate string
	DeathDate string
}

// Location is a place sections happen at.
type Location struct {
	Title string
	Desc  string
}

// Item is a thing sections refer to.
type Item struct {
	Title string
	Desc  string
}

// PlotLine is a storyline grouping sections.
type PlotLine struct {
	Title     string
	ShortName string
	Sections  []string
}
