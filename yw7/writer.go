package yw7

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/severity"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/xmlfix"
	"github.com/erraggy/yw7tools/ywerrors"
)

const (
	// Header is the XML declaration every written document starts with.
	Header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

	// DefaultIndent is the indentation of written documents.
	DefaultIndent = "\t"

	// BackupSuffix is appended to the path of the previous document when a
	// write replaces it.
	BackupSuffix = ".bak"

	// LockSuffix names the lock file yWriter creates next to an open project.
	LockSuffix = ".lock"

	formatVersion = "7"
	yes           = "-1"
)

const warningSeverity = severity.SeverityWarning

var (
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	langCodePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// WriteResult is a serialized yWriter 7 document.
type WriteResult struct {
	// Data is the UTF-8 document, starting with [Header].
	Data []byte
	// Issues lists everything the writer dropped or defaulted.
	Issues issues.List
}

// Writer serializes a model.Project as yWriter 7 XML.
type Writer struct {
	// Path names the document in errors and issues. Optional.
	Path string
	// Indent is the indentation unit. Defaults to [DefaultIndent].
	Indent string
	// Logger receives diagnostics. Defaults to NopLogger.
	Logger Logger
	// Backup keeps the replaced document as path + [BackupSuffix] in WriteFile.
	Backup bool
	// LockCheck makes WriteFile refuse to write while yWriter holds the project open.
	LockCheck bool
}

// NewWriter creates a Writer with backups and lock checks enabled.
func NewWriter() *Writer {
	return &Writer{
		Indent:    DefaultIndent,
		Logger:    NopLogger{},
		Backup:    true,
		LockCheck: true,
	}
}

// Write serializes p.
//
// IDs are renumbered sequentially per kind in output order. Plot lines are
// written as chapters after the regular chapters and plot points as scenes
// after the regular scenes. Output is deterministic: the same project always
// yields the same bytes.
//
// A project without a title, with duplicate IDs, or with a scene that no
// chapter lists is returned as [ywerrors.MalformedProjectError]. Dangling
// references and fields that cannot be written are dropped and reported in
// [WriteResult.Issues].
func (w *Writer) Write(p *model.Project) (*WriteResult, error) {
	log := loggerOrNop(w.Logger)
	if p == nil {
		return nil, &ywerrors.MalformedProjectError{Path: w.Path, Message: "project is nil"}
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, &ywerrors.MalformedProjectError{Path: w.Path, Element: "PROJECT/Title", Message: "project title is empty"}
	}

	ws := &writeState{path: w.Path, p: p}
	doc, err := ws.build()
	if err != nil {
		return nil, err
	}

	indent := w.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	var buf bytes.Buffer
	buf.WriteString(Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)
	if err := enc.Encode(doc); err != nil {
		return nil, &ywerrors.WriteIOError{Path: w.Path, Op: "encode", Cause: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &ywerrors.WriteIOError{Path: w.Path, Op: "encode", Cause: err}
	}
	buf.WriteByte('\n')

	log.Info("wrote yw7 project",
		"path", w.Path,
		"chapters", len(doc.Chapters.Items),
		"scenes", len(doc.Scenes.Items),
		"bytes", buf.Len(),
		"issues", len(ws.issues))
	return &WriteResult{Data: buf.Bytes(), Issues: ws.issues}, nil
}

// WriteFile serializes p and writes it to path.
//
// With LockCheck set, an existing path + [LockSuffix] fails the write with a
// locked [ywerrors.WriteIOError]. With Backup set, an existing document is
// renamed to path + [BackupSuffix] first and restored if the write fails.
func (w *Writer) WriteFile(p *model.Project, path string) (*WriteResult, error) {
	log := loggerOrNop(w.Logger)
	if w.LockCheck && IsLocked(path) {
		return nil, &ywerrors.WriteIOError{Path: path, Op: "lock", IsLocked: true}
	}

	ww := *w
	ww.Path = path
	res, err := ww.Write(p)
	if err != nil {
		return nil, err
	}

	backup := path + BackupSuffix
	backedUp := false
	if w.Backup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, backup); err != nil {
				return nil, &ywerrors.WriteIOError{Path: path, Op: "backup", Cause: err}
			}
			backedUp = true
		}
	}

	if err := writeFile(path, res.Data); err != nil {
		werr := &ywerrors.WriteIOError{Path: path, Op: "write", Cause: err}
		if backedUp {
			if rerr := os.Rename(backup, path); rerr != nil {
				log.Error("failed to restore backup", "path", path, "error", rerr)
				return nil, errors.Join(werr, &ywerrors.WriteIOError{Path: path, Op: "restore", Cause: rerr})
			}
		}
		return nil, werr
	}
	log.Debug("wrote file", "path", path, "backup", backedUp)
	return res, nil
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}

// IsLocked reports whether yWriter holds the project at path open.
func IsLocked(path string) bool {
	_, err := os.Stat(path + LockSuffix)
	return err == nil
}

// writeState holds the ID maps of one Write call.
type writeState struct {
	path   string
	p      *model.Project
	issues issues.List

	chapterIDs map[int]int
	sceneIDs   map[int]int
	charIDs    map[int]int
	locIDs     map[int]int
	itemIDs    map[int]int

	plotLineIDs map[*model.PlotLine]int
	pointIDs    map[*model.PlotPoint]int
	shortNames  map[*model.PlotLine]string
	sceneArcs   map[int][]string
	sceneAssoc  map[int][]string
	pointAssoc  map[*model.PlotPoint]int
}

func (ws *writeState) malformed(element, format string, args ...any) error {
	return &ywerrors.MalformedProjectError{Path: ws.path, Element: element, Message: fmt.Sprintf(format, args...)}
}

func (ws *writeState) build() (*xmlDoc, error) {
	if err := ws.renumber(); err != nil {
		return nil, err
	}
	chapterScenes, err := ws.assignScenes()
	if err != nil {
		return nil, err
	}
	ws.plotStructure()

	doc := &xmlDoc{XMLName: xml.Name{Local: rootElement}}
	doc.Project = ws.project()
	for _, l := range ws.p.Locations {
		doc.Locations.Items = append(doc.Locations.Items, ws.world(l, ws.locIDs[l.ID], "location"))
	}
	for _, it := range ws.p.Items {
		doc.Items.Items = append(doc.Items.Items, ws.world(it, ws.itemIDs[it.ID], "item"))
	}
	for _, c := range ws.p.Characters {
		doc.Characters.Items = append(doc.Characters.Items, ws.character(c))
	}
	doc.ProjectVars.Items = ws.projectVars()

	for _, sc := range ws.p.Scenes {
		doc.Scenes.Items = append(doc.Scenes.Items, ws.scene(sc))
	}
	for _, pl := range ws.p.PlotLines {
		for _, pp := range pl.Points {
			doc.Scenes.Items = append(doc.Scenes.Items, ws.plotPoint(pl, pp))
		}
	}

	for i, c := range ws.p.Chapters {
		doc.Chapters.Items = append(doc.Chapters.Items, ws.chapter(c, chapterScenes[i]))
	}
	for _, pl := range ws.p.PlotLines {
		doc.Chapters.Items = append(doc.Chapters.Items, ws.plotLine(pl))
	}

	if len(ws.p.ProjectNotes) > 0 {
		doc.ProjectNotes = &xmlProjectNotes{}
		for i, n := range ws.p.ProjectNotes {
			doc.ProjectNotes.Items = append(doc.ProjectNotes.Items, &xmlProjectNote{
				ID:    strconv.Itoa(i + 1),
				Title: text(n.Title),
				Desc:  text(n.Desc),
			})
		}
	}
	doc.WCLog = ws.wordCountLog()
	return doc, nil
}

// renumber maps model IDs to output IDs, 1-based in output order.
func (ws *writeState) renumber() error {
	var err error
	number := func(kind string, ids []int, offset int) map[int]int {
		out := make(map[int]int, len(ids))
		for i, id := range ids {
			if _, dup := out[id]; dup && err == nil {
				err = ws.malformed(fmt.Sprintf("%s %d", kind, id), "duplicate %s ID", kind)
			}
			out[id] = offset + i + 1
		}
		return out
	}

	ws.chapterIDs = number("chapter", ids(ws.p.Chapters, func(c *model.Chapter) int { return c.ID }), 0)
	ws.sceneIDs = number("scene", ids(ws.p.Scenes, func(s *model.Scene) int { return s.ID }), 0)
	ws.charIDs = number("character", ids(ws.p.Characters, func(c *model.Character) int { return c.ID }), 0)
	ws.locIDs = number("location", ids(ws.p.Locations, func(l *model.WorldElement) int { return l.ID }), 0)
	ws.itemIDs = number("item", ids(ws.p.Items, func(l *model.WorldElement) int { return l.ID }), 0)
	if err != nil {
		return err
	}

	ws.plotLineIDs = map[*model.PlotLine]int{}
	ws.pointIDs = map[*model.PlotPoint]int{}
	nextChapter, nextScene := len(ws.p.Chapters), len(ws.p.Scenes)
	for _, pl := range ws.p.PlotLines {
		nextChapter++
		ws.plotLineIDs[pl] = nextChapter
		for _, pp := range pl.Points {
			nextScene++
			ws.pointIDs[pp] = nextScene
		}
	}
	return nil
}

func ids[T any](items []T, id func(T) int) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

// assignScenes resolves the chapter scene lists to output IDs. Every scene
// must belong to exactly one chapter.
func (ws *writeState) assignScenes() ([][]string, error) {
	owner := map[int]int{}
	out := make([][]string, len(ws.p.Chapters))
	for i, c := range ws.p.Chapters {
		entity := fmt.Sprintf("chapter %d", c.ID)
		for _, sid := range c.Scenes {
			nid, ok := ws.sceneIDs[sid]
			if !ok {
				ws.issues.Warn(issues.KindDanglingReference, "Scenes", entity, "chapter references missing scene %d; reference dropped", sid)
				continue
			}
			if o, dup := owner[sid]; dup {
				ws.issues.Warn(issues.KindDanglingReference, "Scenes", entity, "scene %d already belongs to chapter %d; reference dropped", sid, o)
				continue
			}
			owner[sid] = c.ID
			out[i] = append(out[i], strconv.Itoa(nid))
		}
	}
	for _, sc := range ws.p.Scenes {
		if _, ok := owner[sc.ID]; !ok {
			return nil, ws.malformed(fmt.Sprintf("scene %d", sc.ID), "scene is not listed in any chapter")
		}
	}
	return out, nil
}

// plotStructure derives the arc and association fields that tie plot lines
// to scenes.
func (ws *writeState) plotStructure() {
	ws.shortNames = map[*model.PlotLine]string{}
	ws.sceneArcs = map[int][]string{}
	ws.sceneAssoc = map[int][]string{}
	ws.pointAssoc = map[*model.PlotPoint]int{}

	used := map[string]bool{}
	for _, pl := range ws.p.PlotLines {
		entity := fmt.Sprintf("plot line %d", pl.ID)
		short := strings.TrimSpace(pl.ShortName)
		if short == "" || strings.Contains(short, ";") || used[short] {
			def := fmt.Sprintf("PL%d", ws.plotLineIDs[pl])
			ws.issues.Add(issues.Issue{
				Kind:     issues.KindDefaultedField,
				Path:     "ShortName",
				Entity:   entity,
				Field:    "ShortName",
				Value:    pl.ShortName,
				Message:  fmt.Sprintf("short name %q is empty, ambiguous or contains ';'; replaced by %s", pl.ShortName, def),
				Severity: warningSeverity,
			})
			short = def
		}
		used[short] = true
		ws.shortNames[pl] = short

		for _, sid := range pl.Scenes {
			if _, ok := ws.sceneIDs[sid]; !ok {
				ws.issues.Warn(issues.KindDanglingReference, "Scenes", entity, "plot line references missing scene %d; reference dropped", sid)
				continue
			}
			if !slices.Contains(ws.sceneArcs[sid], short) {
				ws.sceneArcs[sid] = append(ws.sceneArcs[sid], short)
			}
		}
		for _, pp := range pl.Points {
			if pp.Scene == 0 {
				continue
			}
			nid, ok := ws.sceneIDs[pp.Scene]
			if !ok {
				ws.issues.Warn(issues.KindDanglingReference, "Scene", fmt.Sprintf("plot point %d", pp.ID),
					"plot point references missing scene %d; reference dropped", pp.Scene)
				continue
			}
			ws.pointAssoc[pp] = nid
			ws.sceneAssoc[pp.Scene] = append(ws.sceneAssoc[pp.Scene], strconv.Itoa(ws.pointIDs[pp]))
		}
	}
}

func text(s string) *cdata {
	if s == "" {
		return nil
	}
	return &cdata{Text: xmlfix.StripIllegal(s)}
}

func flagElement(b bool) *string {
	if !b {
		return nil
	}
	v := yes
	return &v
}

// customFields appends the writable fields of src to dst.
func (ws *writeState) customFields(dst *xmlFields, src model.Fields, entity string) {
	for _, f := range src {
		if structuralFields[f.Name] || !fieldNamePattern.MatchString(f.Name) {
			ws.unsupportedField(entity, f, "field name cannot be written")
			continue
		}
		if kind, ok := DeclaredFieldKind(f.Name); ok && kind != f.Value.Kind() {
			ws.unsupportedField(entity, f, fmt.Sprintf("value has type %s, want %s", f.Value.Kind(), kind))
			continue
		}
		v, asCDATA := EncodeField(f.Value)
		dst.add(f.Name, xmlfix.StripIllegal(v), asCDATA)
	}
}

func (ws *writeState) unsupportedField(entity string, f model.Field, why string) {
	ws.issues.Add(issues.Issue{
		Kind:     issues.KindUnsupportedField,
		Path:     issues.FormatPath("Fields", f.Name),
		Entity:   entity,
		Field:    f.Name,
		Value:    f.Value.Any(),
		Message:  why + "; field dropped",
		Severity: warningSeverity,
	})
}

func fieldsOrNil(f *xmlFields) *xmlFields {
	if len(f.Items) == 0 {
		return nil
	}
	return f
}

func (ws *writeState) project() *xmlProject {
	p := ws.p
	xp := &xmlProject{
		Ver:            formatVersion,
		Title:          text(p.Title),
		Desc:           text(p.Desc),
		AuthorName:     text(p.Author),
		WordCountStart: strconv.Itoa(p.WordCountStart),
		WordTarget:     strconv.Itoa(p.WordTarget),
	}
	fields := &xmlFields{}
	if p.LanguageCode != "" {
		fields.add(fieldLanguageCode, p.LanguageCode, false)
	}
	if p.CountryCode != "" {
		fields.add(fieldCountryCode, p.CountryCode, false)
	}
	ws.customFields(fields, p.Fields, "project")
	xp.Fields = fieldsOrNil(fields)
	return xp
}

func (ws *writeState) world(e *model.WorldElement, id int, kind string) *xmlWorld {
	fields := &xmlFields{}
	ws.customFields(fields, e.Fields, fmt.Sprintf("%s %d", kind, e.ID))
	return &xmlWorld{
		ID:     strconv.Itoa(id),
		Title:  text(e.Title),
		Desc:   text(e.Desc),
		AKA:    text(e.AKA),
		Tags:   text(JoinTags(e.Tags)),
		Fields: fieldsOrNil(fields),
	}
}

func (ws *writeState) character(c *model.Character) *xmlCharacter {
	fields := &xmlFields{}
	ws.customFields(fields, c.Fields, fmt.Sprintf("character %d", c.ID))
	return &xmlCharacter{
		ID:       strconv.Itoa(ws.charIDs[c.ID]),
		Title:    text(c.Title),
		Desc:     text(c.Desc),
		Notes:    text(c.Notes),
		AKA:      text(c.AKA),
		Tags:     text(JoinTags(c.Tags)),
		Bio:      text(c.Bio),
		Goals:    text(c.Goals),
		FullName: text(c.FullName),
		Major:    flagElement(c.Major),
		Fields:   fieldsOrNil(fields),
	}
}

// languages returns the declared languages followed by the ones only used
// in scene text.
func (ws *writeState) languages() []string {
	var out []string
	add := func(code string) {
		if code == "" || slices.Contains(out, code) {
			return
		}
		if !langCodePattern.MatchString(code) {
			ws.issues.Warn(issues.KindUnsupportedMarkup, "PROJECTVARS", "project", "language code %q cannot be written; dropped", code)
			return
		}
		out = append(out, code)
	}
	for _, code := range ws.p.Languages {
		add(code)
	}
	for _, sc := range ws.p.Scenes {
		for _, code := range sc.Content.Languages() {
			add(code)
		}
	}
	return out
}

func (ws *writeState) projectVars() []*xmlProjectVar {
	var vars []*xmlProjectVar
	add := func(title, desc string) {
		vars = append(vars, &xmlProjectVar{
			ID:    strconv.Itoa(len(vars) + 1),
			Title: text(title),
			Desc:  text(desc),
			Tags:  "0",
		})
	}
	if ws.p.LanguageCode != "" {
		add("Language", ws.p.LanguageCode)
	}
	if ws.p.CountryCode != "" {
		add("Country", ws.p.CountryCode)
	}
	for _, code := range ws.languages() {
		add("lang="+code, fmt.Sprintf(`<HTM <SPAN LANG="%s"> /HTM>`, code))
		add("/lang="+code, `<HTM </SPAN> /HTM>`)
	}
	return vars
}

func (ws *writeState) scene(sc *model.Scene) *xmlScene {
	entity := fmt.Sprintf("scene %d", sc.ID)
	xs := &xmlScene{
		ID:           strconv.Itoa(ws.sceneIDs[sc.ID]),
		Title:        text(sc.Title),
		Desc:         text(sc.Desc),
		Notes:        text(sc.Notes),
		AppendToPrev: flagElement(sc.AppendToPrev),
		LastsDays:    sc.LastsDays,
		LastsHours:   sc.LastsHours,
		LastsMinutes: sc.LastsMinutes,
		Goal:         text(sc.Goal),
		Conflict:     text(sc.Conflict),
		Outcome:      text(sc.Outcome),
		SceneContent: &xmlContent{Text: xmlfix.StripIllegal(EncodeShortcodes(sc.Content))},
	}
	if codes := LiteralCodes(sc.Content); len(codes) > 0 {
		ws.issues.Add(issues.Issue{
			Kind:     issues.KindUnsupportedMarkup,
			Path:     "SceneContent",
			Entity:   entity,
			Field:    "SceneContent",
			Value:    codes,
			Message:  fmt.Sprintf("text contains %d literal shortcode(s); yWriter reads them as markup", len(codes)),
			Context:  strings.Join(codes, " "),
			Severity: warningSeverity,
		})
	}

	fields := &xmlFields{}
	tags := slices.Clone(sc.Tags)
	switch sc.Type {
	case model.SceneNotes:
		xs.Unused = flagElement(true)
		fields.add(fieldSceneType, "1", false)
	case model.SceneTodo:
		xs.Unused = flagElement(true)
		fields.add(fieldSceneType, "2", false)
	case model.SceneStage:
		xs.Unused = flagElement(true)
		fields.add(fieldSceneType, "2", false)
		if !slices.Contains(tags, stageTag) {
			tags = append(tags, stageTag)
		}
	case model.SceneUnused:
		xs.Unused = flagElement(true)
		fields.add(fieldSceneType, "0", false)
	}
	if arcs := ws.sceneArcs[sc.ID]; len(arcs) > 0 {
		fields.add(fieldSceneArcs, JoinTags(arcs), true)
	}
	if assoc := ws.sceneAssoc[sc.ID]; len(assoc) > 0 {
		fields.add(fieldSceneAssoc, JoinTags(assoc), false)
	}
	switch sc.Kind {
	case model.KindCustom:
		fields.add(fieldCustomAR, "1", false)
	case model.KindReaction:
		xs.ReactionScene = flagElement(true)
	}
	ws.customFields(fields, sc.Fields, entity)
	xs.Fields = fieldsOrNil(fields)
	xs.Tags = text(JoinTags(tags))

	status := sc.Status
	if status < model.MinStatus || status > model.MaxStatus {
		if status != 0 {
			ws.issues.Add(issues.Issue{
				Kind:     issues.KindDefaultedField,
				Path:     "Status",
				Entity:   entity,
				Field:    "Status",
				Value:    status,
				Message:  fmt.Sprintf("invalid status %d replaced by %d", status, model.MinStatus),
				Severity: warningSeverity,
			})
		}
		status = model.MinStatus
	}
	xs.Status = strconv.Itoa(status)

	ws.sceneTime(xs, sc, entity)

	if refs := ws.refs(sc.Characters, ws.charIDs, entity, "character"); len(refs) > 0 {
		xs.Characters = &xmlCharRefs{IDs: refs}
	}
	if refs := ws.refs(sc.Locations, ws.locIDs, entity, "location"); len(refs) > 0 {
		xs.Locations = &xmlLocRefs{IDs: refs}
	}
	if refs := ws.refs(sc.Items, ws.itemIDs, entity, "item"); len(refs) > 0 {
		xs.Items = &xmlItemRefs{IDs: refs}
	}
	return xs
}

func (ws *writeState) sceneTime(xs *xmlScene, sc *model.Scene, entity string) {
	if sc.Date != "" {
		tm := sc.Time
		if tm == "" {
			tm = "00:00:00"
		}
		t, err := time.Parse(dateLayout+" "+timeLayout, sc.Date+" "+normalizeTime(tm))
		if err != nil {
			ws.issues.Add(issues.Issue{
				Kind:     issues.KindDefaultedField,
				Path:     "Date",
				Entity:   entity,
				Field:    "Date",
				Value:    sc.Date + " " + sc.Time,
				Message:  fmt.Sprintf("invalid date %q dropped", sc.Date+" "+sc.Time),
				Severity: warningSeverity,
			})
			return
		}
		xs.SpecificDateTime = t.Format(dateLayout + " " + timeLayout)
		xs.SpecificDateMode = yes
		return
	}

	xs.Day = sc.Day
	if sc.Time == "" {
		return
	}
	t, err := time.Parse(timeLayout, normalizeTime(sc.Time))
	if err != nil {
		ws.issues.Add(issues.Issue{
			Kind:     issues.KindDefaultedField,
			Path:     "Time",
			Entity:   entity,
			Field:    "Time",
			Value:    sc.Time,
			Message:  fmt.Sprintf("invalid time %q dropped", sc.Time),
			Severity: warningSeverity,
		})
		return
	}
	xs.Hour = fmt.Sprintf("%02d", t.Hour())
	xs.Minute = fmt.Sprintf("%02d", t.Minute())
}

// normalizeTime accepts "15:04" as well as "15:04:05".
func normalizeTime(s string) string {
	if strings.Count(s, ":") == 1 {
		return s + ":00"
	}
	return s
}

func (ws *writeState) refs(ids []int, known map[int]int, entity, kind string) []string {
	var out []string
	seen := map[int]bool{}
	for _, id := range ids {
		nid, ok := known[id]
		if !ok {
			ws.issues.Warn(issues.KindDanglingReference, kind+"s", entity, "references missing %s %d; reference dropped", kind, id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, strconv.Itoa(nid))
	}
	return out
}

func (ws *writeState) plotPoint(pl *model.PlotLine, pp *model.PlotPoint) *xmlScene {
	fields := &xmlFields{}
	fields.add(fieldSceneType, "2", false)
	fields.add(fieldSceneArcs, ws.shortNames[pl], true)
	if nid, ok := ws.pointAssoc[pp]; ok {
		fields.add(fieldSceneAssoc, strconv.Itoa(nid), false)
	}
	return &xmlScene{
		ID:           strconv.Itoa(ws.pointIDs[pp]),
		Title:        text(pp.Title),
		Desc:         text(pp.Desc),
		Fields:       fields,
		Unused:       flagElement(true),
		Status:       strconv.Itoa(model.MinStatus),
		SceneContent: &xmlContent{},
	}
}

// chapterTypeEncoding follows how yWriter 7.1.3 stores chapter types as
// Unused, Type and ChapterType.
var chapterTypeEncoding = map[model.ChapterType]struct {
	unused           bool
	typ, chapterType string
}{
	model.ChapterNormal: {false, "0", "0"},
	model.ChapterNotes:  {true, "1", "1"},
	model.ChapterTodo:   {true, "1", "2"},
	model.ChapterUnused: {true, "1", "0"},
}

func (ws *writeState) chapter(c *model.Chapter, scenes []string) *xmlChapter {
	enc, ok := chapterTypeEncoding[c.Type]
	if !ok {
		enc = chapterTypeEncoding[model.ChapterNormal]
	}
	fields := &xmlFields{}
	ws.customFields(fields, c.Fields, fmt.Sprintf("chapter %d", c.ID))
	xc := &xmlChapter{
		ID:          strconv.Itoa(ws.chapterIDs[c.ID]),
		Title:       text(c.Title),
		Desc:        text(c.Desc),
		Unused:      flagElement(enc.unused),
		Fields:      fieldsOrNil(fields),
		Type:        enc.typ,
		ChapterType: enc.chapterType,
		Scenes:      &xmlSceneRefs{IDs: scenes},
	}
	if c.Level == model.LevelPart {
		xc.SectionStart = flagElement(true)
	}
	return xc
}

func (ws *writeState) plotLine(pl *model.PlotLine) *xmlChapter {
	enc := chapterTypeEncoding[model.ChapterTodo]
	fields := &xmlFields{}
	fields.add(fieldArcDefinition, ws.shortNames[pl], true)
	var points []string
	for _, pp := range pl.Points {
		points = append(points, strconv.Itoa(ws.pointIDs[pp]))
	}
	return &xmlChapter{
		ID:          strconv.Itoa(ws.plotLineIDs[pl]),
		Title:       text(pl.Title),
		Desc:        text(pl.Desc),
		Unused:      flagElement(enc.unused),
		Fields:      fields,
		Type:        enc.typ,
		ChapterType: enc.chapterType,
		Scenes:      &xmlSceneRefs{IDs: points},
	}
}

// wordCountLog writes the log in model order. With Field_SaveWordCount set,
// entries repeating the previous counts are skipped.
func (ws *writeState) wordCountLog() *xmlWCLog {
	if len(ws.p.WordCountLog) == 0 {
		return nil
	}
	dedupe := ws.p.Fields.Flag(fieldSaveWordCount)
	log := &xmlWCLog{}
	var last *model.WordCount
	for i := range ws.p.WordCountLog {
		wc := &ws.p.WordCountLog[i]
		if dedupe && last != nil && last.Count == wc.Count && last.TotalCount == wc.TotalCount {
			continue
		}
		last = wc
		log.Items = append(log.Items, &xmlWC{
			Date:       wc.Date,
			Count:      strconv.Itoa(wc.Count),
			TotalCount: strconv.Itoa(wc.TotalCount),
		})
	}
	return log
}
