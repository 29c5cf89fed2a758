package yw7

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/ywerrors"
)

const (
	rootElement = "YWRITER7"
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04:05"
	stageTag    = "stage"
)

var (
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	refListSeparators = regexp.MustCompile(`[;,\s]+`)
)

// ReadResult is a project read from a yWriter 7 document.
type ReadResult struct {
	Project *model.Project
	// Issues lists everything the reader dropped or defaulted, in document order.
	Issues issues.List
}

// Reader builds a model.Project from yWriter 7 XML.
type Reader struct {
	// Path names the document in errors and issues. Optional.
	Path string
	// Logger receives diagnostics. Defaults to NopLogger.
	Logger Logger
}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{Logger: NopLogger{}}
}

// Read parses well-formed yWriter 7 XML text.
//
// Missing mandatory structure (root element, project title, a scene's
// chapter) and invalid or duplicate IDs are returned as
// [ywerrors.MalformedProjectError]. Dangling references, invalid optional
// values and removed formatting codes are reported in [ReadResult.Issues].
func (r *Reader) Read(text string) (*ReadResult, error) {
	log := loggerOrNop(r.Logger)
	doc, err := decodeDocument(text, r.Path)
	if err != nil {
		return nil, err
	}
	st := newReadState(r.Path, doc)
	if err := st.run(); err != nil {
		return nil, err
	}
	p := st.p
	log.Info("read yw7 project",
		"path", r.Path,
		"chapters", len(p.Chapters),
		"scenes", len(p.Scenes),
		"plotLines", len(p.PlotLines),
		"issues", len(st.issues))
	return &ReadResult{Project: p, Issues: st.issues}, nil
}

func decodeDocument(text, path string) (*xmlDoc, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = passThroughCharset
	var doc xmlDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ywerrors.MalformedProjectError{Path: path, Element: rootElement, Message: "document has no root element"}
		}
		line := 0
		var synErr *xml.SyntaxError
		if errors.As(err, &synErr) {
			line = synErr.Line
		}
		return nil, &ywerrors.UnrepairableDocumentError{Path: path, Line: line, Message: "document is not well-formed", Cause: err}
	}
	if doc.XMLName.Local != rootElement {
		return nil, &ywerrors.MalformedProjectError{
			Path:    path,
			Element: doc.XMLName.Local,
			Message: fmt.Sprintf("root element must be <%s>", rootElement),
		}
	}
	return &doc, nil
}

type rawChapter struct {
	ch   *model.Chapter
	ids  []string
	path string
}

type pointRef struct {
	line *model.PlotLine
	id   int
	path string
}

type rawRefs struct {
	chars, locs, items []string
	arcs               string
	path               string
}

// readState holds the lookup tables of one Read call.
type readState struct {
	path   string
	doc    *xmlDoc
	p      *model.Project
	issues issues.List

	chapterIDs map[int]bool
	sceneIDs   map[int]bool
	charIDs    map[int]bool
	locIDs     map[int]bool
	itemIDs    map[int]bool

	chapters   []rawChapter
	pointLine  map[int]*model.PlotLine
	pointOrder []pointRef
	points     map[int]*model.PlotPoint
	pointAssoc map[int]string
	scenes     map[int]*model.Scene
	sceneRefs  map[int]rawRefs
}

func newReadState(path string, doc *xmlDoc) *readState {
	return &readState{
		path:       path,
		doc:        doc,
		p:          &model.Project{},
		chapterIDs: map[int]bool{},
		sceneIDs:   map[int]bool{},
		pointLine:  map[int]*model.PlotLine{},
		points:     map[int]*model.PlotPoint{},
		pointAssoc: map[int]string{},
		scenes:     map[int]*model.Scene{},
		sceneRefs:  map[int]rawRefs{},
	}
}

func (st *readState) run() error {
	steps := []func() error{
		st.readProject,
		st.readCharacters,
		st.readLocationsAndItems,
		st.readProjectVars,
		st.readChapters,
		st.readScenes,
		st.resolveChapters,
		st.resolveScenes,
		st.readProjectNotes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	st.collectLanguages()
	st.readWordCountLog()
	return nil
}

func (st *readState) malformed(element, format string, args ...any) error {
	return &ywerrors.MalformedProjectError{Path: st.path, Element: element, Message: fmt.Sprintf(format, args...)}
}

// id parses the ID of an entity element.
func (st *readState) id(raw, path, kind string, seen map[int]bool) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, &ywerrors.MalformedProjectError{
			Path:    st.path,
			Element: path + "/ID",
			Message: fmt.Sprintf("invalid %s ID %q", kind, raw),
			Cause:   err,
		}
	}
	if seen[id] {
		return 0, st.malformed(path+"/ID", "duplicate %s ID %d", kind, id)
	}
	seen[id] = true
	return id, nil
}

func (st *readState) intValue(raw, path, entity, field string, def int) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		st.defaulted(path, entity, field, raw, strconv.Itoa(def))
		return def
	}
	return v
}

// intString keeps an integer-valued element as text, or drops it with a
// warning if it is not an integer.
func (st *readState) intString(raw, path, entity, field string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if _, err := strconv.Atoi(s); err != nil {
		st.defaulted(path, entity, field, raw, "empty")
		return ""
	}
	return s
}

func (st *readState) defaulted(path, entity, field, value, def string) {
	st.issues.Add(issues.Issue{
		Kind:     issues.KindDefaultedField,
		Path:     issues.FormatPath(path, field),
		Entity:   entity,
		Field:    field,
		Value:    value,
		Message:  fmt.Sprintf("invalid %s %q replaced by %s", field, value, def),
		Severity: warningSeverity,
	})
}

func (st *readState) fields(xf *xmlFields, path, entity string) model.Fields {
	if xf == nil {
		return nil
	}
	var out model.Fields
	for _, it := range xf.Items {
		if structuralFields[it.Name] {
			continue
		}
		v, ok := DecodeField(it.Name, it.Value)
		if !ok {
			kind, _ := DeclaredFieldKind(it.Name)
			st.issues.Add(issues.Issue{
				Kind:     issues.KindUnsupportedField,
				Path:     issues.FormatPath(path, "Fields", it.Name),
				Entity:   entity,
				Field:    it.Name,
				Value:    it.Value,
				Message:  fmt.Sprintf("value %q is not a valid %s; field dropped", it.Value, kind),
				Severity: warningSeverity,
			})
			continue
		}
		out.Set(it.Name, v)
	}
	return out
}

func (st *readState) readProject() error {
	xp := st.doc.Project
	if xp == nil {
		return st.malformed("PROJECT", "project element is missing")
	}
	if strings.TrimSpace(xp.Title.String()) == "" {
		return st.malformed("PROJECT/Title", "project title is missing")
	}
	p := st.p
	p.Title = xp.Title.String()
	p.Desc = xp.Desc.String()
	p.Author = xp.AuthorName.String()
	p.WordCountStart = st.intValue(xp.WordCountStart, "PROJECT", "project", "WordCountStart", 0)
	p.WordTarget = st.intValue(xp.WordTarget, "PROJECT", "project", "WordTarget", 0)
	p.Fields = st.fields(xp.Fields, "PROJECT", "project")
	if v, ok := xp.Fields.Get(fieldLanguageCode); ok {
		p.LanguageCode = strings.TrimSpace(v)
	}
	if v, ok := xp.Fields.Get(fieldCountryCode); ok {
		p.CountryCode = strings.TrimSpace(v)
	}
	return nil
}

func (st *readState) readCharacters() error {
	st.charIDs = map[int]bool{}
	for i, xc := range st.doc.Characters.Items {
		path := fmt.Sprintf("CHARACTERS/CHARACTER[%d]", i+1)
		id, err := st.id(xc.ID, path, "character", st.charIDs)
		if err != nil {
			return err
		}
		st.p.Characters = append(st.p.Characters, &model.Character{
			ID:       id,
			Title:    xc.Title.String(),
			Desc:     xc.Desc.String(),
			Notes:    xc.Notes.String(),
			AKA:      xc.AKA.String(),
			Tags:     SplitTags(xc.Tags.String()),
			Bio:      xc.Bio.String(),
			Goals:    xc.Goals.String(),
			FullName: xc.FullName.String(),
			Major:    flag(xc.Major),
			Fields:   st.fields(xc.Fields, path, fmt.Sprintf("character %d", id)),
		})
	}
	return nil
}

func (st *readState) readLocationsAndItems() error {
	var err error
	st.locIDs = map[int]bool{}
	st.p.Locations, err = st.readWorld(st.doc.Locations.Items, "LOCATIONS/LOCATION", "location", st.locIDs)
	if err != nil {
		return err
	}
	st.itemIDs = map[int]bool{}
	st.p.Items, err = st.readWorld(st.doc.Items.Items, "ITEMS/ITEM", "item", st.itemIDs)
	return err
}

func (st *readState) readWorld(elems []*xmlWorld, section, kind string, seen map[int]bool) ([]*model.WorldElement, error) {
	var out []*model.WorldElement
	for i, xw := range elems {
		path := fmt.Sprintf("%s[%d]", section, i+1)
		id, err := st.id(xw.ID, path, kind, seen)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.WorldElement{
			ID:     id,
			Title:  xw.Title.String(),
			Desc:   xw.Desc.String(),
			AKA:    xw.AKA.String(),
			Tags:   SplitTags(xw.Tags.String()),
			Fields: st.fields(xw.Fields, path, fmt.Sprintf("%s %d", kind, id)),
		})
	}
	return out, nil
}

func (st *readState) readProjectVars() error {
	for _, v := range st.doc.ProjectVars.Items {
		title := strings.TrimSpace(v.Title.String())
		switch {
		case title == "Language":
			st.p.LanguageCode = strings.TrimSpace(v.Desc.String())
		case title == "Country":
			st.p.CountryCode = strings.TrimSpace(v.Desc.String())
		case strings.HasPrefix(title, "lang="):
			st.addLanguage(strings.TrimPrefix(title, "lang="))
		}
	}
	return nil
}

func (st *readState) addLanguage(code string) {
	if code != "" && !slices.Contains(st.p.Languages, code) {
		st.p.Languages = append(st.p.Languages, code)
	}
}

// arcDefinition returns the plot line short name of a chapter. The legacy
// field name wins when both are present.
func arcDefinition(f *xmlFields) string {
	for _, name := range []string{fieldArcDefinitionV1, fieldArcDefinition} {
		if v, ok := f.Get(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func chapterType(xc *xmlChapter) model.ChapterType {
	unused := xc.Unused != nil
	if ct := strings.TrimSpace(xc.ChapterType); ct != "" {
		switch ct {
		case "2":
			return model.ChapterTodo
		case "1":
			return model.ChapterNotes
		}
		if unused {
			return model.ChapterUnused
		}
		return model.ChapterNormal
	}
	if strings.TrimSpace(xc.Type) == "1" {
		return model.ChapterNotes
	}
	if unused {
		return model.ChapterUnused
	}
	return model.ChapterNormal
}

// readChapters sorts CHAPTER elements into chapters and plot lines. A plot
// line is a chapter carrying an arc definition; the scenes it lists are its
// plot points.
func (st *readState) readChapters() error {
	for i, xc := range st.doc.Chapters.Items {
		path := fmt.Sprintf("CHAPTERS/CHAPTER[%d]", i+1)
		id, err := st.id(xc.ID, path, "chapter", st.chapterIDs)
		if err != nil {
			return err
		}
		var ids []string
		if xc.Scenes != nil {
			ids = xc.Scenes.IDs
		}

		if short := arcDefinition(xc.Fields); short != "" {
			pl := &model.PlotLine{ID: id, Title: xc.Title.String(), Desc: xc.Desc.String(), ShortName: short}
			st.p.PlotLines = append(st.p.PlotLines, pl)
			entity := fmt.Sprintf("plot line %d", id)
			for _, raw := range ids {
				sid, ok := refID(raw)
				if !ok {
					st.issues.Warn(issues.KindDanglingReference, path+"/Scenes", entity, "invalid plot point ID %q dropped", raw)
					continue
				}
				if owner, dup := st.pointLine[sid]; dup {
					st.issues.Warn(issues.KindDanglingReference, path+"/Scenes", entity,
						"plot point %d already belongs to plot line %d; reference dropped", sid, owner.ID)
					continue
				}
				st.pointLine[sid] = pl
				st.pointOrder = append(st.pointOrder, pointRef{line: pl, id: sid, path: path})
			}
			continue
		}

		ch := &model.Chapter{
			ID:     id,
			Title:  xc.Title.String(),
			Desc:   xc.Desc.String(),
			Type:   chapterType(xc),
			Fields: st.fields(xc.Fields, path, fmt.Sprintf("chapter %d", id)),
		}
		if xc.SectionStart != nil {
			ch.Level = model.LevelPart
		}
		st.p.Chapters = append(st.p.Chapters, ch)
		st.chapters = append(st.chapters, rawChapter{ch: ch, ids: ids, path: path})
	}
	return nil
}

func (st *readState) readScenes() error {
	for i, xs := range st.doc.Scenes.Items {
		path := fmt.Sprintf("SCENES/SCENE[%d]", i+1)
		id, err := st.id(xs.ID, path, "scene", st.sceneIDs)
		if err != nil {
			return err
		}
		if _, ok := st.pointLine[id]; ok {
			st.points[id] = &model.PlotPoint{ID: id, Title: xs.Title.String(), Desc: xs.Desc.String()}
			if v, ok := xs.Fields.Get(fieldSceneAssoc); ok {
				st.pointAssoc[id] = v
			}
			continue
		}
		sc := st.scene(xs, id, path)
		st.p.Scenes = append(st.p.Scenes, sc)
		st.scenes[id] = sc
		refs := rawRefs{path: path}
		if xs.Characters != nil {
			refs.chars = refList(xs.Characters.IDs, xs.Characters.Text)
		}
		if xs.Locations != nil {
			refs.locs = refList(xs.Locations.IDs, xs.Locations.Text)
		}
		if xs.Items != nil {
			refs.items = refList(xs.Items.IDs, xs.Items.Text)
		}
		refs.arcs, _ = xs.Fields.Get(fieldSceneArcs)
		st.sceneRefs[id] = refs
	}

	for _, ref := range st.pointOrder {
		pp, ok := st.points[ref.id]
		if !ok {
			st.issues.Warn(issues.KindDanglingReference, ref.path+"/Scenes", fmt.Sprintf("plot line %d", ref.line.ID),
				"plot line references missing scene %d; plot point dropped", ref.id)
			continue
		}
		ref.line.Points = append(ref.line.Points, pp)
	}
	return nil
}

func (st *readState) scene(xs *xmlScene, id int, path string) *model.Scene {
	entity := fmt.Sprintf("scene %d", id)
	sc := &model.Scene{
		ID:           id,
		Title:        xs.Title.String(),
		Desc:         xs.Desc.String(),
		Notes:        xs.Notes.String(),
		AppendToPrev: flag(xs.AppendToPrev),
		LastsDays:    st.intString(xs.LastsDays, path, entity, "LastsDays"),
		LastsHours:   st.intString(xs.LastsHours, path, entity, "LastsHours"),
		LastsMinutes: st.intString(xs.LastsMinutes, path, entity, "LastsMinutes"),
		Goal:         xs.Goal.String(),
		Conflict:     xs.Conflict.String(),
		Outcome:      xs.Outcome.String(),
		Fields:       st.fields(xs.Fields, path, entity),
	}

	tags := SplitTags(xs.Tags.String())
	sc.Type = sceneType(xs)
	if sc.Type == model.SceneTodo {
		if i := slices.Index(tags, stageTag); i >= 0 {
			sc.Type = model.SceneStage
			tags = slices.Delete(tags, i, i+1)
		}
	}
	if len(tags) > 0 {
		sc.Tags = tags
	}

	sc.Status = model.MinStatus
	if s := strings.TrimSpace(xs.Status); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < model.MinStatus || v > model.MaxStatus {
			st.defaulted(path, entity, "Status", xs.Status, strconv.Itoa(model.MinStatus))
		} else {
			sc.Status = v
		}
	}

	var content string
	if xs.SceneContent != nil {
		content = xs.SceneContent.Text
	}
	text, removed := DecodeShortcodes(content)
	if len(removed) > 0 {
		st.issues.Add(issues.Issue{
			Kind:     issues.KindUnsupportedMarkup,
			Path:     path + "/SceneContent",
			Entity:   entity,
			Field:    "SceneContent",
			Value:    removed,
			Message:  fmt.Sprintf("removed %d raw formatting code(s)", len(removed)),
			Context:  strings.Join(removed, " "),
			Severity: warningSeverity,
		})
	}
	sc.Content = text

	switch {
	case xs.Fields.hasField(fieldCustomAR):
		sc.Kind = model.KindCustom
	case xs.ReactionScene != nil && flag(xs.ReactionScene):
		sc.Kind = model.KindReaction
	case sc.Goal != "" || sc.Conflict != "" || sc.Outcome != "":
		sc.Kind = model.KindAction
	}

	st.sceneTime(xs, sc, path, entity)
	return sc
}

func (f *xmlFields) hasField(name string) bool {
	_, ok := f.Get(name)
	return ok
}

func sceneType(xs *xmlScene) model.SceneType {
	st, _ := xs.Fields.Get(fieldSceneType)
	switch strings.TrimSpace(st) {
	case "1":
		return model.SceneNotes
	case "2":
		return model.SceneTodo
	}
	if xs.Unused != nil {
		return model.SceneUnused
	}
	return model.SceneNormal
}

func (st *readState) sceneTime(xs *xmlScene, sc *model.Scene, path, entity string) {
	if dt := strings.TrimSpace(xs.SpecificDateTime); dt != "" {
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, dt); err == nil {
				sc.Date = t.Format(dateLayout)
				sc.Time = t.Format(timeLayout)
				return
			}
		}
		st.defaulted(path, entity, "SpecificDateTime", xs.SpecificDateTime, "no date")
		return
	}

	sc.Day = st.intString(xs.Day, path, entity, "Day")
	h, m := strings.TrimSpace(xs.Hour), strings.TrimSpace(xs.Minute)
	if h == "" && m == "" {
		return
	}
	hour, herr := atoiOrZero(h)
	minute, merr := atoiOrZero(m)
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		st.defaulted(path, entity, "Hour", xs.Hour+":"+xs.Minute, "no time")
		return
	}
	sc.Time = fmt.Sprintf("%02d:%02d:00", hour, minute)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// resolveChapters assigns every scene to the first chapter listing it.
func (st *readState) resolveChapters() error {
	owner := map[int]int{}
	for _, rc := range st.chapters {
		entity := fmt.Sprintf("chapter %d", rc.ch.ID)
		for _, raw := range rc.ids {
			sid, ok := refID(raw)
			switch {
			case !ok:
				st.issues.Warn(issues.KindDanglingReference, rc.path+"/Scenes", entity, "invalid scene ID %q dropped", raw)
				continue
			case st.points[sid] != nil:
				st.issues.Warn(issues.KindDanglingReference, rc.path+"/Scenes", entity,
					"chapter lists plot point %d as a scene; reference dropped", sid)
				continue
			case st.scenes[sid] == nil:
				st.issues.Warn(issues.KindDanglingReference, rc.path+"/Scenes", entity,
					"chapter references missing scene %d; reference dropped", sid)
				continue
			}
			if o, dup := owner[sid]; dup {
				st.issues.Warn(issues.KindDanglingReference, rc.path+"/Scenes", entity,
					"scene %d already belongs to chapter %d; reference dropped", sid, o)
				continue
			}
			owner[sid] = rc.ch.ID
			rc.ch.Scenes = append(rc.ch.Scenes, sid)
		}
	}
	for _, sc := range st.p.Scenes {
		if _, ok := owner[sc.ID]; !ok {
			return st.malformed(fmt.Sprintf("SCENE %d", sc.ID), "scene is not listed in any chapter")
		}
	}
	return nil
}

func (st *readState) resolveScenes() error {
	byShortName := map[string]*model.PlotLine{}
	for _, pl := range st.p.PlotLines {
		if _, ok := byShortName[pl.ShortName]; !ok {
			byShortName[pl.ShortName] = pl
		}
	}

	for _, sc := range st.p.Scenes {
		refs := st.sceneRefs[sc.ID]
		entity := fmt.Sprintf("scene %d", sc.ID)
		sc.Characters = st.filterRefs(refs.chars, st.charIDs, refs.path+"/Characters", entity, "character")
		sc.Locations = st.filterRefs(refs.locs, st.locIDs, refs.path+"/Locations", entity, "location")
		sc.Items = st.filterRefs(refs.items, st.itemIDs, refs.path+"/Items", entity, "item")

		for _, short := range SplitTags(refs.arcs) {
			pl, ok := byShortName[short]
			if !ok {
				st.issues.Warn(issues.KindDanglingReference, issues.FormatPath(refs.path, "Fields", fieldSceneArcs), entity,
					"scene references missing plot line %q; reference dropped", short)
				continue
			}
			if !slices.Contains(pl.Scenes, sc.ID) {
				pl.Scenes = append(pl.Scenes, sc.ID)
			}
		}
	}

	for _, pl := range st.p.PlotLines {
		for _, pp := range pl.Points {
			raw, ok := st.pointAssoc[pp.ID]
			if !ok {
				continue
			}
			for _, s := range SplitTags(raw) {
				sid, ok := refID(s)
				if ok && st.scenes[sid] != nil {
					pp.Scene = sid
					break
				}
				st.issues.Warn(issues.KindDanglingReference, fieldSceneAssoc, fmt.Sprintf("plot point %d", pp.ID),
					"plot point references missing scene %q; reference dropped", s)
			}
		}
	}
	return nil
}

func (st *readState) filterRefs(raw []string, known map[int]bool, path, entity, kind string) []int {
	var out []int
	for _, s := range raw {
		id, ok := refID(s)
		if !ok || !known[id] {
			st.issues.Warn(issues.KindDanglingReference, path, entity, "references missing %s %s; reference dropped", kind, strings.TrimSpace(s))
			continue
		}
		if slices.Contains(out, id) {
			st.issues.Warn(issues.KindDanglingReference, path, entity, "duplicate %s %d; reference dropped", kind, id)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (st *readState) readProjectNotes() error {
	if st.doc.ProjectNotes == nil {
		return nil
	}
	seen := map[int]bool{}
	for i, xn := range st.doc.ProjectNotes.Items {
		path := fmt.Sprintf("PROJECTNOTES/PROJECTNOTE[%d]", i+1)
		id, err := st.id(xn.ID, path, "project note", seen)
		if err != nil {
			return err
		}
		st.p.ProjectNotes = append(st.p.ProjectNotes, &model.ProjectNote{ID: id, Title: xn.Title.String(), Desc: xn.Desc.String()})
	}
	return nil
}

// collectLanguages adds the languages used in scene text that the project
// variables do not declare.
func (st *readState) collectLanguages() {
	for _, sc := range st.p.Scenes {
		for _, code := range sc.Content.Languages() {
			st.addLanguage(code)
		}
	}
}

func (st *readState) readWordCountLog() {
	if st.doc.WCLog == nil {
		return
	}
	for i, wc := range st.doc.WCLog.Items {
		path := fmt.Sprintf("WCLog/WC[%d]", i+1)
		date := strings.TrimSpace(wc.Date)
		if date == "" {
			st.issues.Warn(issues.KindDefaultedField, path, "word count log", "entry without a date dropped")
			continue
		}
		st.p.WordCountLog = append(st.p.WordCountLog, model.WordCount{
			Date:       date,
			Count:      st.intValue(wc.Count, path, "word count log", "Count", 0),
			TotalCount: st.intValue(wc.TotalCount, path, "word count log", "TotalCount", 0),
		})
	}
}

// SplitTags splits a semicolon-separated list, trimming entries and dropping
// empty ones.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ";")
}

func refList(ids []string, text string) []string {
	if len(ids) > 0 {
		return ids
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return refListSeparators.Split(text, -1)
}

func refID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	return id, err == nil && id > 0
}

func flag(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != "0"
}
