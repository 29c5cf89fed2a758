package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/severity"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/xmlfix"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/erraggy/yw7tools/ywerrors"
)

// FromHost builds a model project from src.
//
// Model IDs are assigned sequentially per kind in host list order; plot
// points are numbered across plot lines. Dangling and duplicate references
// are dropped with a warning, host fields without a yw7 counterpart are
// reported as unsupported. A section that no chapter lists is returned as
// [ywerrors.MalformedProjectError].
func (m *Mapper) FromHost(src host.Project) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("mapper: host project is nil")
	}
	fs := &fromHostState{
		src:   src,
		p:     &model.Project{},
		ids:   map[Ref]string{},
		model: map[host.Kind]map[string]int{},
	}
	fs.number()
	steps := []func() error{
		fs.novel,
		fs.characters,
		fs.world,
		fs.scenes,
		fs.chapters,
		fs.plotLines,
		fs.projectNotes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	fs.collectLanguages()
	m.logger().Info("mapped project from host",
		"chapters", len(fs.p.Chapters),
		"scenes", len(fs.p.Scenes),
		"plotLines", len(fs.p.PlotLines),
		"issues", len(fs.issues))
	return &Result{Project: fs.p, HostIDs: fs.ids, Issues: fs.issues}, nil
}

type fromHostState struct {
	src    host.Project
	p      *model.Project
	ids    map[Ref]string
	model  map[host.Kind]map[string]int
	issues issues.List
}

// number assigns sequential model IDs to every listed entity. Plot points
// are numbered later, in plot line order.
func (fs *fromHostState) number() {
	for _, kind := range host.Kinds {
		if kind == host.KindPlotPoint {
			continue
		}
		fs.model[kind] = map[string]int{}
		for i, hid := range fs.src.List(kind) {
			if _, dup := fs.model[kind][hid]; dup {
				continue
			}
			fs.model[kind][hid] = i + 1
			fs.ids[Ref{Kind: kind, ID: i + 1}] = hid
		}
	}
	fs.model[host.KindPlotPoint] = map[string]int{}
}

func (fs *fromHostState) defaulted(entity, field string, value any, format string, args ...any) {
	fs.issues.Add(issues.Issue{
		Kind:     issues.KindDefaultedField,
		Path:     field,
		Entity:   entity,
		Field:    field,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity.SeverityWarning,
	})
}

func (fs *fromHostState) str(id, entity, name string) string {
	v, ok := fs.src.Field(id, name)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		s := "0"
		if x {
			s = "1"
		}
		fs.defaulted(entity, name, v, "boolean value converted to text %q", s)
		return s
	}
	fs.defaulted(entity, name, v, "value of type %T ignored", v)
	return ""
}

func (fs *fromHostState) integer(id, entity, name string, def int) int {
	v, ok := fs.src.Field(id, name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return i
		}
	}
	fs.defaulted(entity, name, v, "value %v is not a number; using %d", v, def)
	return def
}

func (fs *fromHostState) boolean(id, entity, name string) bool {
	v, ok := fs.src.Field(id, name)
	if !ok {
		return false
	}
	if b, ok := toBool(v); ok {
		return b
	}
	fs.defaulted(entity, name, v, "value %v is not a boolean; using false", v)
	return false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		return yw7.ParseBool(x)
	case int:
		switch x {
		case 0:
			return false, true
		case 1, -1:
			return true, true
		}
	}
	return false, false
}

func (fs *fromHostState) tags(id, entity string) []string {
	return yw7.SplitTags(fs.str(id, entity, fTags))
}

// customFields reads every non-attribute field of id.
func (fs *fromHostState) customFields(kind host.Kind, id, entity string) model.Fields {
	var out model.Fields
	for _, hostName := range fs.src.FieldNames(id) {
		if IsAttributeField(kind, hostName) {
			continue
		}
		v, _ := fs.src.Field(id, hostName)
		name, ok := ModelFieldName(hostName)
		if !ok || yw7.IsStructuralField(name) {
			fs.unsupported(entity, hostName, v, "field has no yw7 counterpart; field dropped")
			continue
		}
		fv, ok := fieldValue(name, v)
		if !ok {
			want, _ := yw7.DeclaredFieldKind(name)
			fs.unsupported(entity, hostName, v, fmt.Sprintf("value %v does not fit type %s; field dropped", v, want))
			continue
		}
		out.Set(name, fv)
	}
	return out
}

func (fs *fromHostState) unsupported(entity, field string, v any, msg string) {
	fs.issues.Add(issues.Issue{
		Kind:     issues.KindUnsupportedField,
		Path:     field,
		Entity:   entity,
		Field:    field,
		Value:    v,
		Message:  msg,
		Severity: severity.SeverityWarning,
	})
}

// fieldValue types a host value for the yw7 field name. Declared fields
// accept the "1"/"0" and numeric string forms.
func fieldValue(name string, v any) (model.FieldValue, bool) {
	kind, declared := yw7.DeclaredFieldKind(name)
	if !declared {
		switch x := v.(type) {
		case bool:
			return model.BoolValue(x), true
		case int:
			return model.IntValue(x), true
		case string:
			return model.StringValue(x), true
		}
		return model.FieldValue{}, false
	}
	switch kind {
	case model.FieldBool:
		b, ok := toBool(v)
		return model.BoolValue(b), ok
	case model.FieldInt:
		switch x := v.(type) {
		case int:
			return model.IntValue(x), true
		case string:
			return yw7.DecodeField(name, x)
		}
		return model.FieldValue{}, false
	}
	s, ok := v.(string)
	return model.StringValue(s), ok
}

// resolve maps host reference IDs of one kind to model IDs, dropping
// dangling and repeated ones.
func (fs *fromHostState) resolve(kind host.Kind, hids []string, entity, rel string) []int {
	var out []int
	seen := map[int]bool{}
	for _, hid := range hids {
		id, ok := fs.model[kind][hid]
		if !ok {
			fs.issues.Warn(issues.KindDanglingReference, rel, entity,
				"references missing %s %s; reference dropped", entityName(kind), hid)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (fs *fromHostState) novel() error {
	const id, entity = host.NovelID, "project"
	p := fs.p
	p.Title = fs.str(id, entity, fTitle)
	p.Desc = fs.str(id, entity, fDesc)
	p.Author = fs.str(id, entity, fAuthorName)
	p.WordCountStart = fs.integer(id, entity, fWordCountStart, 0)
	p.WordTarget = fs.integer(id, entity, fWordTarget, 0)
	p.LanguageCode = fs.str(id, entity, fLanguageCode)
	p.CountryCode = fs.str(id, entity, fCountryCode)
	p.Languages = yw7.SplitTags(fs.str(id, entity, fLanguages))
	p.Fields = fs.customFields(host.KindNovel, id, entity)

	for i, line := range strings.Split(fs.str(id, entity, fWordCountLog), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		wc, ok := parseWordCount(line)
		if !ok {
			fs.defaulted(entity, fWordCountLog, line, "word count log line %d is malformed; entry dropped", i+1)
			continue
		}
		p.WordCountLog = append(p.WordCountLog, wc)
	}
	return nil
}

func parseWordCount(line string) (model.WordCount, bool) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return model.WordCount{}, false
	}
	count, err1 := strconv.Atoi(parts[1])
	total, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return model.WordCount{}, false
	}
	return model.WordCount{Date: parts[0], Count: count, TotalCount: total}, true
}

func (fs *fromHostState) characters() error {
	for _, hid := range fs.src.List(host.KindCharacter) {
		id := fs.model[host.KindCharacter][hid]
		entity := fmt.Sprintf("character %d", id)
		fs.p.Characters = append(fs.p.Characters, &model.Character{
			ID:       id,
			Title:    fs.str(hid, entity, fTitle),
			Desc:     fs.str(hid, entity, fDesc),
			Notes:    fs.str(hid, entity, fNotes),
			AKA:      fs.str(hid, entity, fAKA),
			Tags:     fs.tags(hid, entity),
			Bio:      fs.str(hid, entity, fBio),
			Goals:    fs.str(hid, entity, fGoals),
			FullName: fs.str(hid, entity, fFullName),
			Major:    fs.boolean(hid, entity, fIsMajor),
			Fields:   fs.customFields(host.KindCharacter, hid, entity),
		})
	}
	return nil
}

func (fs *fromHostState) world() error {
	for _, kind := range []host.Kind{host.KindLocation, host.KindItem} {
		for _, hid := range fs.src.List(kind) {
			id := fs.model[kind][hid]
			entity := fmt.Sprintf("%s %d", kind, id)
			e := &model.WorldElement{
				ID:     id,
				Title:  fs.str(hid, entity, fTitle),
				Desc:   fs.str(hid, entity, fDesc),
				AKA:    fs.str(hid, entity, fAKA),
				Tags:   fs.tags(hid, entity),
				Fields: fs.customFields(kind, hid, entity),
			}
			if kind == host.KindLocation {
				fs.p.Locations = append(fs.p.Locations, e)
			} else {
				fs.p.Items = append(fs.p.Items, e)
			}
		}
	}
	return nil
}

var (
	chapterLevels = enumTable(model.LevelChapter, model.LevelPart)
	chapterTypes  = enumTable(model.ChapterNormal, model.ChapterNotes, model.ChapterTodo, model.ChapterUnused)
	sceneTypes    = enumTable(model.SceneNormal, model.SceneNotes, model.SceneTodo, model.SceneUnused, model.SceneStage)
	sceneKinds    = enumTable(model.KindNone, model.KindAction, model.KindReaction, model.KindCustom)
)

func enumTable[T fmt.Stringer](values ...T) map[string]T {
	out := make(map[string]T, len(values))
	for _, v := range values {
		out[v.String()] = v
	}
	return out
}

func enumField[T any](fs *fromHostState, table map[string]T, id, entity, name string, def T) T {
	s := strings.TrimSpace(fs.str(id, entity, name))
	if s == "" {
		return def
	}
	if v, ok := table[strings.ToLower(s)]; ok {
		return v
	}
	fs.defaulted(entity, name, s, "unknown value %q; using the default", s)
	return def
}

func (fs *fromHostState) scenes() error {
	for _, hid := range fs.src.List(host.KindSection) {
		id := fs.model[host.KindSection][hid]
		entity := fmt.Sprintf("scene %d", id)
		sc := &model.Scene{
			ID:           id,
			Title:        fs.str(hid, entity, fTitle),
			Desc:         fs.str(hid, entity, fDesc),
			Content:      fs.content(hid, entity),
			Type:         enumField(fs, sceneTypes, hid, entity, fScType, model.SceneNormal),
			Status:       fs.integer(hid, entity, fStatus, model.MinStatus),
			Notes:        fs.str(hid, entity, fNotes),
			Tags:         fs.tags(hid, entity),
			AppendToPrev: fs.boolean(hid, entity, fAppendToPrev),
			Date:         fs.str(hid, entity, fDate),
			Time:         fs.str(hid, entity, fTime),
			Day:          fs.str(hid, entity, fDay),
			LastsDays:    fs.str(hid, entity, fLastsDays),
			LastsHours:   fs.str(hid, entity, fLastsHours),
			LastsMinutes: fs.str(hid, entity, fLastsMinutes),
			Goal:         fs.str(hid, entity, fGoal),
			Conflict:     fs.str(hid, entity, fConflict),
			Outcome:      fs.str(hid, entity, fOutcome),
			Kind:         enumField(fs, sceneKinds, hid, entity, fSceneKind, model.KindNone),
			Characters:   fs.resolve(host.KindCharacter, fs.src.References(hid, host.RelCharacters), entity, host.RelCharacters),
			Locations:    fs.resolve(host.KindLocation, fs.src.References(hid, host.RelLocations), entity, host.RelLocations),
			Items:        fs.resolve(host.KindItem, fs.src.References(hid, host.RelItems), entity, host.RelItems),
			Fields:       fs.customFields(host.KindSection, hid, entity),
		}
		if sc.Status < model.MinStatus || sc.Status > model.MaxStatus {
			fs.defaulted(entity, fStatus, sc.Status, "status %d out of range; using %d", sc.Status, model.MinStatus)
			sc.Status = model.MinStatus
		}
		fs.p.Scenes = append(fs.p.Scenes, sc)
	}
	return nil
}

func (fs *fromHostState) content(id, entity string) model.Text {
	raw := fs.str(id, entity, fContent)
	markup := raw
	// Unrepairable markup is left to ParseMarkup, which reports it.
	if fixed, err := xmlfix.Fix(raw); err == nil {
		markup = fixed.Text
		for _, r := range fixed.Repairs {
			fs.issues.Add(issues.Issue{
				Kind:     issues.KindRepair,
				Path:     fContent,
				Entity:   entity,
				Message:  r.Message,
				Severity: severity.SeverityInfo,
			})
		}
	}
	t, unsupported, err := ParseMarkup(markup)
	if err != nil {
		fs.issues.Add(issues.Issue{
			Kind:     issues.KindUnsupportedMarkup,
			Path:     fContent,
			Entity:   entity,
			Message:  fmt.Sprintf("%v; content kept as plain text", err),
			Severity: severity.SeverityWarning,
		})
		return model.PlainText(raw)
	}
	if len(unsupported) > 0 {
		fs.issues.Add(issues.Issue{
			Kind:     issues.KindUnsupportedMarkup,
			Path:     fContent,
			Entity:   entity,
			Value:    unsupported,
			Message:  fmt.Sprintf("unsupported elements %s removed, their text kept", strings.Join(unsupported, ", ")),
			Severity: severity.SeverityWarning,
		})
	}
	return t
}

func (fs *fromHostState) chapters() error {
	owner := map[int]int{}
	for _, hid := range fs.src.List(host.KindChapter) {
		id := fs.model[host.KindChapter][hid]
		entity := fmt.Sprintf("chapter %d", id)
		c := &model.Chapter{
			ID:     id,
			Title:  fs.str(hid, entity, fTitle),
			Desc:   fs.str(hid, entity, fDesc),
			Level:  enumField(fs, chapterLevels, hid, entity, fChLevel, model.LevelChapter),
			Type:   enumField(fs, chapterTypes, hid, entity, fChType, model.ChapterNormal),
			Fields: fs.customFields(host.KindChapter, hid, entity),
		}
		for _, sid := range fs.resolve(host.KindSection, fs.src.References(hid, host.RelSections), entity, host.RelSections) {
			if o, dup := owner[sid]; dup {
				fs.issues.Warn(issues.KindDanglingReference, host.RelSections, entity,
					"scene %d already belongs to chapter %d; reference dropped", sid, o)
				continue
			}
			owner[sid] = id
			c.Scenes = append(c.Scenes, sid)
		}
		fs.p.Chapters = append(fs.p.Chapters, c)
	}
	for _, sc := range fs.p.Scenes {
		if _, ok := owner[sc.ID]; !ok {
			return &ywerrors.MalformedProjectError{
				Element: "section " + fs.ids[Ref{Kind: host.KindSection, ID: sc.ID}],
				Message: "section is not listed in any chapter",
			}
		}
	}
	return nil
}

func (fs *fromHostState) plotLines() error {
	points := map[string]bool{}
	for _, hid := range fs.src.List(host.KindPlotPoint) {
		points[hid] = true
	}
	next := 0
	for _, hid := range fs.src.List(host.KindPlotLine) {
		id := fs.model[host.KindPlotLine][hid]
		entity := fmt.Sprintf("plot line %d", id)
		pl := &model.PlotLine{
			ID:        id,
			Title:     fs.str(hid, entity, fTitle),
			Desc:      fs.str(hid, entity, fDesc),
			ShortName: fs.str(hid, entity, fShortName),
			Scenes:    fs.resolve(host.KindSection, fs.src.References(hid, host.RelSections), entity, host.RelSections),
		}
		for _, ppID := range fs.src.References(hid, host.RelPoints) {
			if !points[ppID] {
				fs.issues.Warn(issues.KindDanglingReference, host.RelPoints, entity,
					"references missing plot point %s; reference dropped", ppID)
				continue
			}
			if _, claimed := fs.model[host.KindPlotPoint][ppID]; claimed {
				fs.issues.Warn(issues.KindDanglingReference, host.RelPoints, entity,
					"plot point %s already belongs to another plot line; reference dropped", ppID)
				continue
			}
			next++
			fs.model[host.KindPlotPoint][ppID] = next
			fs.ids[Ref{Kind: host.KindPlotPoint, ID: next}] = ppID
			pl.Points = append(pl.Points, fs.plotPoint(ppID, next))
		}
		fs.p.PlotLines = append(fs.p.PlotLines, pl)
	}
	for _, ppID := range fs.src.List(host.KindPlotPoint) {
		if _, claimed := fs.model[host.KindPlotPoint][ppID]; !claimed {
			fs.issues.Warn(issues.KindDanglingReference, host.RelPoints, "plot point "+ppID,
				"plot point belongs to no plot line; dropped")
		}
	}
	return nil
}

func (fs *fromHostState) plotPoint(hid string, id int) *model.PlotPoint {
	entity := fmt.Sprintf("plot point %d", id)
	pp := &model.PlotPoint{
		ID:    id,
		Title: fs.str(hid, entity, fTitle),
		Desc:  fs.str(hid, entity, fDesc),
	}
	assoc := fs.resolve(host.KindSection, fs.src.References(hid, host.RelAssoc), entity, host.RelAssoc)
	if len(assoc) > 1 {
		fs.issues.Warn(issues.KindDanglingReference, host.RelAssoc, entity,
			"plot point is associated with %d scenes; keeping scene %d", len(assoc), assoc[0])
	}
	if len(assoc) > 0 {
		pp.Scene = assoc[0]
	}
	return pp
}

func (fs *fromHostState) projectNotes() error {
	for _, hid := range fs.src.List(host.KindProjectNote) {
		id := fs.model[host.KindProjectNote][hid]
		entity := fmt.Sprintf("project note %d", id)
		fs.p.ProjectNotes = append(fs.p.ProjectNotes, &model.ProjectNote{
			ID:    id,
			Title: fs.str(hid, entity, fTitle),
			Desc:  fs.str(hid, entity, fDesc),
		})
	}
	return nil
}

// collectLanguages adds the languages of scene spans missing from the
// novel's language list.
func (fs *fromHostState) collectLanguages() {
	seen := map[string]bool{}
	for _, l := range fs.p.Languages {
		seen[l] = true
	}
	for _, sc := range fs.p.Scenes {
		for _, l := range sc.Content.Languages() {
			if !seen[l] {
				seen[l] = true
				fs.p.Languages = append(fs.p.Languages, l)
			}
		}
	}
}
