package model

// ChapterLevel tells a structural part heading apart from a regular chapter.
type ChapterLevel int

const (
	// LevelChapter is a regular chapter holding scenes.
	LevelChapter ChapterLevel = iota
	// LevelPart is a structural container that is not counted as narrative content.
	LevelPart
)

// String returns "chapter" or "part".
func (l ChapterLevel) String() string {
	if l == LevelPart {
		return "part"
	}
	return "chapter"
}

// ChapterType classifies a chapter.
type ChapterType int

const (
	ChapterNormal ChapterType = iota
	ChapterNotes
	ChapterTodo
	ChapterUnused
)

var chapterTypeNames = [...]string{"normal", "notes", "todo", "unused"}

// String returns the lower-case type name.
func (t ChapterType) String() string {
	if t < 0 || int(t) >= len(chapterTypeNames) {
		return "unknown"
	}
	return chapterTypeNames[t]
}

// SceneType classifies a scene.
type SceneType int

const (
	SceneNormal SceneType = iota
	SceneNotes
	SceneTodo
	SceneUnused
	// SceneStage is a structural stage marker between scenes.
	SceneStage
)

var sceneTypeNames = [...]string{"normal", "notes", "todo", "unused", "stage"}

// String returns the lower-case type name.
func (t SceneType) String() string {
	if t < 0 || int(t) >= len(sceneTypeNames) {
		return "unknown"
	}
	return sceneTypeNames[t]
}

// SceneKind is the dramatic kind of a scene.
type SceneKind int

const (
	KindNone SceneKind = iota
	KindAction
	KindReaction
	KindCustom
)

var sceneKindNames = [...]string{"none", "action", "reaction", "custom"}

// String returns the lower-case kind name.
func (k SceneKind) String() string {
	if k < 0 || int(k) >= len(sceneKindNames) {
		return "unknown"
	}
	return sceneKindNames[k]
}

// Status bounds for Scene.Status.
const (
	MinStatus = 1
	MaxStatus = 5
)

// Project is the root of the in-memory project model.
//
// Collections are ordered; the order is significant and preserved by every
// conversion. Entity IDs are per-kind integers.
type Project struct {
	Title          string
	Desc           string
	Author         string
	WordCountStart int
	WordTarget     int
	LanguageCode   string
	CountryCode    string
	// Languages lists the language codes used by language spans in scene text.
	Languages []string
	Fields    Fields

	Chapters     []*Chapter
	Scenes       []*Scene
	Characters   []*Character
	Locations    []*WorldElement
	Items        []*WorldElement
	PlotLines    []*PlotLine
	ProjectNotes []*ProjectNote
	WordCountLog []WordCount
}

// Chapter is an ordered container of scenes.
type Chapter struct {
	ID     int
	Title  string
	Desc   string
	Level  ChapterLevel
	Type   ChapterType
	Scenes []int
	Fields Fields
}

// Scene is a unit of narrative text belonging to exactly one chapter.
type Scene struct {
	ID           int
	Title        string
	Desc         string
	Content      Text
	Type         SceneType
	Status       int
	Notes        string
	Tags         []string
	AppendToPrev bool

	// Date and Time give a specific start ("2006-01-02", "15:04:05").
	// Day is the unspecific alternative to Date.
	Date         string
	Time         string
	Day          string
	LastsDays    string
	LastsHours   string
	LastsMinutes string

	Goal     string
	Conflict string
	Outcome  string
	Kind     SceneKind

	// Characters lists the scene's characters; the first one is the viewpoint.
	Characters []int
	Locations  []int
	Items      []int
	Fields     Fields
}

// Viewpoint returns the viewpoint character ID, or 0 if the scene has no characters.
func (s *Scene) Viewpoint() int {
	if len(s.Characters) == 0 {
		return 0
	}
	return s.Characters[0]
}

// Character is a person of the story.
type Character struct {
	ID       int
	Title    string
	Desc     string
	Notes    string
	AKA      string
	Tags     []string
	Bio      string
	Goals    string
	FullName string
	Major    bool
	Fields   Fields
}

// WorldElement is a location or an item.
type WorldElement struct {
	ID     int
	Title  string
	Desc   string
	AKA    string
	Tags   []string
	Fields Fields
}

// PlotLine is a story arc: the scenes that belong to it and its ordered plot points.
type PlotLine struct {
	ID        int
	Title     string
	Desc      string
	ShortName string
	Scenes    []int
	Points    []*PlotPoint
}

// PlotPoint is a milestone of a plot line, optionally tied to a scene.
type PlotPoint struct {
	ID    int
	Title string
	Desc  string
	// Scene is the associated scene ID, 0 if none.
	Scene int
}

// ProjectNote is a free-form note attached to the project.
type ProjectNote struct {
	ID    int
	Title string
	Desc  string
}

// WordCount is one entry of the word count log.
type WordCount struct {
	Date       string
	Count      int
	TotalCount int
}

// Index maps entity IDs to entities for one project.
// It is a snapshot; rebuild it after changing the project.
type Index struct {
	Chapters   map[int]*Chapter
	Scenes     map[int]*Scene
	Characters map[int]*Character
	Locations  map[int]*WorldElement
	Items      map[int]*WorldElement
	PlotLines  map[int]*PlotLine
	PlotPoints map[int]*PlotPoint
}

// NewIndex builds an Index over p. When IDs collide the first entity wins.
func NewIndex(p *Project) *Index {
	idx := &Index{
		Chapters:   make(map[int]*Chapter, len(p.Chapters)),
		Scenes:     make(map[int]*Scene, len(p.Scenes)),
		Characters: make(map[int]*Character, len(p.Characters)),
		Locations:  make(map[int]*WorldElement, len(p.Locations)),
		Items:      make(map[int]*WorldElement, len(p.Items)),
		PlotLines:  make(map[int]*PlotLine, len(p.PlotLines)),
		PlotPoints: make(map[int]*PlotPoint),
	}
	for _, c := range p.Chapters {
		if _, ok := idx.Chapters[c.ID]; !ok {
			idx.Chapters[c.ID] = c
		}
	}
	for _, s := range p.Scenes {
		if _, ok := idx.Scenes[s.ID]; !ok {
			idx.Scenes[s.ID] = s
		}
	}
	for _, c := range p.Characters {
		if _, ok := idx.Characters[c.ID]; !ok {
			idx.Characters[c.ID] = c
		}
	}
	for _, l := range p.Locations {
		if _, ok := idx.Locations[l.ID]; !ok {
			idx.Locations[l.ID] = l
		}
	}
	for _, it := range p.Items {
		if _, ok := idx.Items[it.ID]; !ok {
			idx.Items[it.ID] = it
		}
	}
	for _, pl := range p.PlotLines {
		if _, ok := idx.PlotLines[pl.ID]; !ok {
			idx.PlotLines[pl.ID] = pl
		}
		for _, pp := range pl.Points {
			if _, ok := idx.PlotPoints[pp.ID]; !ok {
				idx.PlotPoints[pp.ID] = pp
			}
		}
	}
	return idx
}

// ChapterOf returns the ID of the first chapter listing scene id, or 0.
func (p *Project) ChapterOf(sceneID int) int {
	for _, c := range p.Chapters {
		for _, id := range c.Scenes {
			if id == sceneID {
				return c.ID
			}
		}
	}
	return 0
}

// PlotPointCount returns the number of plot points over all plot lines.
func (p *Project) PlotPointCount() int {
	n := 0
	for _, pl := range p.PlotLines {
		n += len(pl.Points)
	}
	return n
}
