package mapper

import (
	"fmt"
	"strings"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/severity"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/erraggy/yw7tools/ywerrors"
)

// ToHost creates the entities of p in dst under freshly allocated host IDs.
//
// Duplicate model IDs and scenes outside every chapter are returned as
// [ywerrors.MalformedProjectError]; dst may then hold a partial project
// and should be discarded. Dangling references are dropped with a warning.
func (m *Mapper) ToHost(p *model.Project, dst host.Project) (*Result, error) {
	if p == nil {
		return nil, &ywerrors.MalformedProjectError{Message: "project is nil"}
	}
	if dst == nil {
		return nil, fmt.Errorf("mapper: host project is nil")
	}
	ts := &toHostState{m: m, p: p, dst: dst, ids: map[Ref]string{}}
	if err := ts.allocate(); err != nil {
		return nil, err
	}
	if err := ts.checkOwnership(); err != nil {
		return nil, err
	}
	steps := []func() error{
		ts.createEntities,
		ts.novel,
		ts.chapters,
		ts.scenes,
		ts.characters,
		ts.world,
		ts.plotLines,
		ts.projectNotes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	m.logger().Info("mapped project to host",
		"entities", len(ts.order),
		"issues", len(ts.issues))
	return &Result{Project: p, HostIDs: ts.ids, Issues: ts.issues}, nil
}

type toHostState struct {
	m      *Mapper
	p      *model.Project
	dst    host.Project
	ids    map[Ref]string
	order  []Ref
	issues issues.List
}

func (ts *toHostState) allocate() error {
	newID := ts.m.newID()
	add := func(kind host.Kind, id int) error {
		ref := Ref{Kind: kind, ID: id}
		if _, dup := ts.ids[ref]; dup {
			return &ywerrors.MalformedProjectError{
				Element: fmt.Sprintf("%s %d", entityName(kind), id),
				Message: fmt.Sprintf("duplicate %s ID", entityName(kind)),
			}
		}
		ts.ids[ref] = newID(kind)
		ts.order = append(ts.order, ref)
		return nil
	}
	for _, c := range ts.p.Chapters {
		if err := add(host.KindChapter, c.ID); err != nil {
			return err
		}
	}
	for _, s := range ts.p.Scenes {
		if err := add(host.KindSection, s.ID); err != nil {
			return err
		}
	}
	for _, c := range ts.p.Characters {
		if err := add(host.KindCharacter, c.ID); err != nil {
			return err
		}
	}
	for _, l := range ts.p.Locations {
		if err := add(host.KindLocation, l.ID); err != nil {
			return err
		}
	}
	for _, it := range ts.p.Items {
		if err := add(host.KindItem, it.ID); err != nil {
			return err
		}
	}
	for _, pl := range ts.p.PlotLines {
		if err := add(host.KindPlotLine, pl.ID); err != nil {
			return err
		}
	}
	for _, pl := range ts.p.PlotLines {
		for _, pp := range pl.Points {
			if err := add(host.KindPlotPoint, pp.ID); err != nil {
				return err
			}
		}
	}
	for i := range ts.p.ProjectNotes {
		if err := add(host.KindProjectNote, i+1); err != nil {
			return err
		}
	}
	return nil
}

// checkOwnership rejects scenes that no chapter lists.
func (ts *toHostState) checkOwnership() error {
	owned := map[int]bool{}
	for _, c := range ts.p.Chapters {
		for _, sid := range c.Scenes {
			owned[sid] = true
		}
	}
	for _, s := range ts.p.Scenes {
		if !owned[s.ID] {
			return &ywerrors.MalformedProjectError{
				Element: fmt.Sprintf("scene %d", s.ID),
				Message: "scene is not listed in any chapter",
			}
		}
	}
	return nil
}

func (ts *toHostState) createEntities() error {
	for _, ref := range ts.order {
		if err := ts.dst.Create(ref.Kind, ts.ids[ref]); err != nil {
			return fmt.Errorf("mapper: creating %s %d: %w", entityName(ref.Kind), ref.ID, err)
		}
	}
	return nil
}

func (ts *toHostState) id(kind host.Kind, id int) string {
	return ts.ids[Ref{Kind: kind, ID: id}]
}

// set writes a field unless the value is the zero value of its type.
func (ts *toHostState) set(id, name string, v any) error {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
	case bool:
		if !x {
			return nil
		}
	case int:
		if x == 0 {
			return nil
		}
	}
	return ts.setAlways(id, name, v)
}

func (ts *toHostState) setAlways(id, name string, v any) error {
	if err := ts.dst.SetField(id, name, v); err != nil {
		return fmt.Errorf("mapper: setting %s.%s: %w", id, name, err)
	}
	return nil
}

func (ts *toHostState) setAll(id string, fields []hostField) error {
	for _, f := range fields {
		if err := ts.set(id, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

type hostField struct {
	name  string
	value any
}

func (ts *toHostState) customFields(kind host.Kind, id string, fields model.Fields, entity string) error {
	for _, f := range fields {
		name := HostFieldName(f.Name)
		if yw7.IsStructuralField(f.Name) || IsAttributeField(kind, name) {
			ts.issues.Add(issues.Issue{
				Kind:     issues.KindUnsupportedField,
				Path:     issues.FormatPath("Fields", f.Name),
				Entity:   entity,
				Field:    f.Name,
				Value:    f.Value.Any(),
				Message:  "field name is reserved in the host project; field dropped",
				Severity: severity.SeverityWarning,
			})
			continue
		}
		if err := ts.setAlways(id, name, f.Value.Any()); err != nil {
			return err
		}
	}
	return nil
}

func (ts *toHostState) refs(kind host.Kind, ids []int, entity, rel string) []string {
	var out []string
	seen := map[int]bool{}
	for _, id := range ids {
		hid, ok := ts.ids[Ref{Kind: kind, ID: id}]
		if !ok {
			ts.issues.Warn(issues.KindDanglingReference, rel, entity,
				"references missing %s %d; reference dropped", entityName(kind), id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, hid)
	}
	return out
}

func (ts *toHostState) setRefs(id, rel string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ts.dst.SetReferences(id, rel, ids); err != nil {
		return fmt.Errorf("mapper: setting %s references of %s: %w", rel, id, err)
	}
	return nil
}

func (ts *toHostState) novel() error {
	p := ts.p
	var wcLog []string
	for _, wc := range p.WordCountLog {
		wcLog = append(wcLog, fmt.Sprintf("%s %d %d", wc.Date, wc.Count, wc.TotalCount))
	}
	err := ts.setAll(host.NovelID, []hostField{
		{fTitle, p.Title},
		{fDesc, p.Desc},
		{fAuthorName, p.Author},
		{fWordCountStart, p.WordCountStart},
		{fWordTarget, p.WordTarget},
		{fLanguageCode, p.LanguageCode},
		{fCountryCode, p.CountryCode},
		{fLanguages, yw7.JoinTags(p.Languages)},
		{fWordCountLog, strings.Join(wcLog, "\n")},
	})
	if err != nil {
		return err
	}
	return ts.customFields(host.KindNovel, host.NovelID, p.Fields, "project")
}

func (ts *toHostState) chapters() error {
	owner := map[int]int{}
	for _, c := range ts.p.Chapters {
		id := ts.id(host.KindChapter, c.ID)
		entity := fmt.Sprintf("chapter %d", c.ID)
		err := ts.setAll(id, []hostField{
			{fTitle, c.Title},
			{fDesc, c.Desc},
			{fChLevel, c.Level.String()},
			{fChType, c.Type.String()},
		})
		if err != nil {
			return err
		}
		if err := ts.customFields(host.KindChapter, id, c.Fields, entity); err != nil {
			return err
		}
		var sections []int
		for _, sid := range c.Scenes {
			if o, dup := owner[sid]; dup {
				ts.issues.Warn(issues.KindDanglingReference, host.RelSections, entity,
					"scene %d already belongs to chapter %d; reference dropped", sid, o)
				continue
			}
			if _, ok := ts.ids[Ref{Kind: host.KindSection, ID: sid}]; ok {
				owner[sid] = c.ID
			}
			sections = append(sections, sid)
		}
		if err := ts.setRefs(id, host.RelSections, ts.refs(host.KindSection, sections, entity, host.RelSections)); err != nil {
			return err
		}
	}
	return nil
}

func (ts *toHostState) scenes() error {
	for _, sc := range ts.p.Scenes {
		id := ts.id(host.KindSection, sc.ID)
		entity := fmt.Sprintf("scene %d", sc.ID)
		status := sc.Status
		if status < model.MinStatus || status > model.MaxStatus {
			if status != 0 {
				ts.issues.Warn(issues.KindDefaultedField, fStatus, entity, "status %d out of range; using %d", status, model.MinStatus)
			}
			status = model.MinStatus
		}
		err := ts.setAll(id, []hostField{
			{fTitle, sc.Title},
			{fDesc, sc.Desc},
			{fContent, RenderMarkup(sc.Content)},
			{fScType, sc.Type.String()},
			{fStatus, status},
			{fNotes, sc.Notes},
			{fTags, yw7.JoinTags(sc.Tags)},
			{fAppendToPrev, sc.AppendToPrev},
			{fDate, sc.Date},
			{fTime, sc.Time},
			{fDay, sc.Day},
			{fLastsDays, sc.LastsDays},
			{fLastsHours, sc.LastsHours},
			{fLastsMinutes, sc.LastsMinutes},
			{fGoal, sc.Goal},
			{fConflict, sc.Conflict},
			{fOutcome, sc.Outcome},
		})
		if err != nil {
			return err
		}
		if sc.Kind != model.KindNone {
			if err := ts.setAlways(id, fSceneKind, sc.Kind.String()); err != nil {
				return err
			}
		}
		if err := ts.customFields(host.KindSection, id, sc.Fields, entity); err != nil {
			return err
		}
		relations := []struct {
			rel  string
			kind host.Kind
			ids  []int
		}{
			{host.RelCharacters, host.KindCharacter, sc.Characters},
			{host.RelLocations, host.KindLocation, sc.Locations},
			{host.RelItems, host.KindItem, sc.Items},
		}
		for _, r := range relations {
			if err := ts.setRefs(id, r.rel, ts.refs(r.kind, r.ids, entity, r.rel)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ts *toHostState) characters() error {
	for _, c := range ts.p.Characters {
		id := ts.id(host.KindCharacter, c.ID)
		err := ts.setAll(id, []hostField{
			{fTitle, c.Title},
			{fDesc, c.Desc},
			{fNotes, c.Notes},
			{fAKA, c.AKA},
			{fTags, yw7.JoinTags(c.Tags)},
			{fBio, c.Bio},
			{fGoals, c.Goals},
			{fFullName, c.FullName},
			{fIsMajor, c.Major},
		})
		if err != nil {
			return err
		}
		if err := ts.customFields(host.KindCharacter, id, c.Fields, fmt.Sprintf("character %d", c.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (ts *toHostState) world() error {
	groups := []struct {
		kind  host.Kind
		elems []*model.WorldElement
	}{
		{host.KindLocation, ts.p.Locations},
		{host.KindItem, ts.p.Items},
	}
	for _, g := range groups {
		for _, e := range g.elems {
			id := ts.id(g.kind, e.ID)
			err := ts.setAll(id, []hostField{
				{fTitle, e.Title},
				{fDesc, e.Desc},
				{fAKA, e.AKA},
				{fTags, yw7.JoinTags(e.Tags)},
			})
			if err != nil {
				return err
			}
			if err := ts.customFields(g.kind, id, e.Fields, fmt.Sprintf("%s %d", g.kind, e.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ts *toHostState) plotLines() error {
	for _, pl := range ts.p.PlotLines {
		id := ts.id(host.KindPlotLine, pl.ID)
		entity := fmt.Sprintf("plot line %d", pl.ID)
		err := ts.setAll(id, []hostField{
			{fTitle, pl.Title},
			{fDesc, pl.Desc},
			{fShortName, pl.ShortName},
		})
		if err != nil {
			return err
		}
		if err := ts.setRefs(id, host.RelSections, ts.refs(host.KindSection, pl.Scenes, entity, host.RelSections)); err != nil {
			return err
		}
		points := make([]string, len(pl.Points))
		for i, pp := range pl.Points {
			ppID := ts.id(host.KindPlotPoint, pp.ID)
			points[i] = ppID
			if err := ts.setAll(ppID, []hostField{{fTitle, pp.Title}, {fDesc, pp.Desc}}); err != nil {
				return err
			}
			if pp.Scene == 0 {
				continue
			}
			assoc := ts.refs(host.KindSection, []int{pp.Scene}, fmt.Sprintf("plot point %d", pp.ID), host.RelAssoc)
			if err := ts.setRefs(ppID, host.RelAssoc, assoc); err != nil {
				return err
			}
		}
		if err := ts.setRefs(id, host.RelPoints, points); err != nil {
			return err
		}
	}
	return nil
}

func (ts *toHostState) projectNotes() error {
	for i, pn := range ts.p.ProjectNotes {
		id := ts.id(host.KindProjectNote, i+1)
		if err := ts.setAll(id, []hostField{{fTitle, pn.Title}, {fDesc, pn.Desc}}); err != nil {
			return err
		}
	}
	return nil
}

func entityName(kind host.Kind) string {
	switch kind {
	case host.KindSection:
		return "scene"
	case host.KindPlotLine:
		return "plot line"
	case host.KindPlotPoint:
		return "plot point"
	case host.KindProjectNote:
		return "project note"
	}
	return string(kind)
}
