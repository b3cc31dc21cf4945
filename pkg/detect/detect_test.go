package detect

import (
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/ritzau/codewarn/pkg/conventions"
	"github.com/ritzau/codewarn/pkg/cycles"
	"github.com/ritzau/codewarn/pkg/graph"
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/reexport"
	"github.com/ritzau/codewarn/pkg/resolve"
	"github.com/ritzau/codewarn/pkg/usage"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func file(id, path string, imports ...string) *model.FileNode {
	f := &model.FileNode{ID: id, FilePath: path, Name: path}
	for _, src := range imports {
		f.Imports = append(f.Imports, model.ImportInfo{Source: src})
	}
	return f
}

func TestCircular_ThreeFileCycle(t *testing.T) {
	files := []*model.FileNode{
		file("A", "src/a.ts", "./b"),
		file("B", "src/b.ts", "./c"),
		file("C", "src/c.ts", "./a"),
	}
	r := resolve.NewResolver(nil)

	warnings := Circular(files, graph.BuildFileGraph(files, r), cycles.MemberSetKey, testTime)

	if len(warnings) != 1 {
		t.Fatalf("Expected exactly 1 warning, got %d", len(warnings))
	}

	w := warnings[0]
	members := append([]string(nil), w.AffectedNodes...)
	sort.Strings(members)
	if !reflect.DeepEqual(members, []string{"A", "B", "C"}) {
		t.Errorf("Expected members {A,B,C}, got %v", w.AffectedNodes)
	}
	if w.Level != model.LevelWarning || w.Category != model.CategoryCircularDependency {
		t.Errorf("Unexpected level/category: %s/%s", w.Level, w.Category)
	}
	if w.Suggestion.AutoFixable {
		t.Error("Expected cycle warning not to be auto-fixable")
	}
	if w.Title != "Circular dependency: src/a.ts → src/b.ts → src/c.ts" {
		t.Errorf("Unexpected title: %s", w.Title)
	}
	if !w.DetectedAt.Equal(testTime) {
		t.Errorf("Expected detection time %v, got %v", testTime, w.DetectedAt)
	}
}

func TestCircular_Acyclic(t *testing.T) {
	files := []*model.FileNode{
		file("A", "src/a.ts", "./b", "./c", "lodash"),
		file("B", "src/b.ts", "./c", "./missing"),
		file("C", "src/c.ts"),
	}
	r := resolve.NewResolver(nil)

	if warnings := Circular(files, graph.BuildFileGraph(files, r), nil, testTime); len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %d", len(warnings))
	}
}

func TestCircular_SelfImport(t *testing.T) {
	files := []*model.FileNode{
		file("A", "src/a.ts", "./a", "./b"),
		file("B", "src/b.ts"),
	}
	r := resolve.NewResolver(nil)

	if warnings := Circular(files, graph.BuildFileGraph(files, r), cycles.MemberSetKey, testTime); len(warnings) != 0 {
		t.Errorf("Expected self-import to produce no warnings, got %d", len(warnings))
	}
}

func TestFunctionCircular(t *testing.T) {
	files := []*model.FileNode{file("f", "src/parse.ts")}
	functions := []*model.FunctionNode{
		{ID: "f.expr", Name: "parseExpr", ParentFileID: "f", References: []string{"parseTerm"}},
		{ID: "f.term", Name: "parseTerm", ParentFileID: "f", References: []string{"parseExpr", "parseTerm"}},
		{ID: "f.lit", Name: "parseLiteral", ParentFileID: "f", References: []string{"parseLiteral"}},
	}
	calls := graph.BuildCallGraph(files, functions, resolve.NewResolver(nil))

	warnings := FunctionCircular(functions, calls, testTime)
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if !reflect.DeepEqual(warnings[0].AffectedNodes, []string{"f.expr", "f.term"}) {
		t.Errorf("Unexpected members: %v", warnings[0].AffectedNodes)
	}
}

func orphanOptions(frameworks bool) OrphanOptions {
	m := conventions.MustCompile(conventions.DefaultRuleSet())
	opts := OrphanOptions{EntryPoints: m}
	if frameworks {
		opts.Frameworks = m
	}
	return opts
}

func TestOrphans_TopLevelReferenceClears(t *testing.T) {
	f := file("f", "src/server.ts")
	f.TopLevelReferences = []string{"onRequest"}
	p := model.Partition{
		Files:     []*model.FileNode{f},
		Functions: []*model.FunctionNode{{ID: "fn", Name: "onRequest", FilePath: "src/server.ts", ParentFileID: "f"}},
	}

	if warnings := Orphans(p, orphanOptions(true), testTime); len(warnings) != 0 {
		t.Errorf("Expected callback registered at module scope to be cleared, got %d warnings", len(warnings))
	}
}

func TestOrphans_UnreferencedHelper(t *testing.T) {
	p := model.Partition{
		Files: []*model.FileNode{file("f", "src/math.ts")},
		Functions: []*model.FunctionNode{
			{ID: "fn", Name: "roundHalfEven", FilePath: "src/math.ts", ParentFileID: "f"},
		},
	}

	warnings := Orphans(p, orphanOptions(true), testTime)
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.Level != model.LevelInfo || !reflect.DeepEqual(w.AffectedNodes, []string{"fn"}) {
		t.Errorf("Unexpected warning: %+v", w)
	}
}

func TestOrphans_Clearance(t *testing.T) {
	importer := file("i", "src/app.ts")
	importer.Imports = []model.ImportInfo{{Source: "./x", Items: []model.ImportItem{{Name: "imported"}}}}
	exporter := file("e", "src/lib.ts")
	exporter.Exports = []model.ExportInfo{{Name: "listed", Kind: model.ExportValue}}
	route := file("r", "app/api/route.ts")

	p := model.Partition{
		Files: []*model.FileNode{importer, exporter, route},
		Functions: []*model.FunctionNode{
			{ID: "1", Name: "imported", ParentFileID: "e"},
			{ID: "2", Name: "listed", ParentFileID: "e"},
			{ID: "3", Name: "callee", ParentFileID: "e"},
			{ID: "4", Name: "caller", ParentFileID: "e", References: []string{"callee", "caller"}},
			{ID: "5", Name: "selfOnly", ParentFileID: "e", References: []string{"selfOnly"}},
			{ID: "6", Name: "_private", ParentFileID: "e"},
			{ID: "7", Name: "setupDb", ParentFileID: "e"},
			{ID: "8", Name: "method", ParentFileID: "e", ParentClassID: "c"},
			{ID: "9", Name: "exported", ParentFileID: "e", IsExported: true},
			{ID: "10", Name: "GET", ParentFileID: "r", FilePath: "app/api/route.ts"},
		},
	}

	warnings := Orphans(p, orphanOptions(true), testTime)

	var flagged []string
	for _, w := range warnings {
		flagged = append(flagged, w.AffectedNodes[0])
	}
	// caller: nobody references it; selfOnly: self reference does not count
	if !reflect.DeepEqual(flagged, []string{"4", "5"}) {
		t.Errorf("Expected [4 5] flagged, got %v", flagged)
	}

	// Without framework conventions the route handler is a candidate
	warnings = Orphans(p, orphanOptions(false), testTime)
	if len(warnings) != 3 {
		t.Errorf("Expected 3 warnings without framework conventions, got %d", len(warnings))
	}
}

func unusedFixture() ([]*model.FileNode, usage.Index) {
	foo := file("foo", "src/lib/Foo.ts")
	foo.Exports = []model.ExportInfo{{Name: "Foo", Kind: model.ExportValue}}

	utils := file("utils", "src/lib/utils.ts")
	utils.Exports = []model.ExportInfo{
		{Name: "helper", Kind: model.ExportValue},
		{Name: "unusedHelper", Kind: model.ExportValue},
		{Name: "Options", Kind: model.ExportInterface},
		{Name: "Mode", Kind: model.ExportType},
		{Name: "Shape", Kind: model.ExportValue, IsTypeOnly: true},
	}

	barrel := file("barrel", "src/lib/index.ts")
	barrel.Exports = []model.ExportInfo{
		{Name: "Foo", Alias: "Bar", Kind: model.ExportReexport, Source: "./Foo"},
		{Name: "*", Kind: model.ExportReexport, Source: "./utils"},
		{Name: "unreachable", Kind: model.ExportValue},
	}

	consumer := file("consumer", "src/app.ts")
	consumer.Imports = []model.ImportInfo{
		{Source: "./lib", Items: []model.ImportItem{{Name: "Bar"}, {Name: "helper"}}},
	}

	files := []*model.FileNode{foo, utils, barrel, consumer}
	r := resolve.NewResolver(nil)
	idx := usage.NewCollector(r, reexport.Build(files, r)).CollectStructural(files)
	return files, idx
}

func TestUnusedExports_ReexportCrediting(t *testing.T) {
	files, idx := unusedFixture()

	warnings := UnusedExports(files, idx, nil, testTime)

	var titles []string
	for _, w := range warnings {
		titles = append(titles, w.Title)
	}
	// Foo credited through the alias, helper through the star re-export,
	// type exports and the barrel itself skipped
	want := []string{"Unused export: unusedHelper"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("Expected %v, got %v", want, titles)
	}
	if warnings[0].AffectedNodes[0] != "utils" || warnings[0].Level != model.LevelInfo {
		t.Errorf("Unexpected warning: %+v", warnings[0])
	}
}

func TestUnusedExports_DefaultAndNamespace(t *testing.T) {
	page := file("page", "app/blog/page.tsx")
	page.Exports = []model.ExportInfo{{Name: "BlogPage", Kind: model.ExportValue, IsDefault: true}}
	widget := file("widget", "src/Widget.tsx")
	widget.Exports = []model.ExportInfo{{Name: "Widget", Kind: model.ExportValue, IsDefault: true}}
	store := file("store", "src/store.ts")
	store.Exports = []model.ExportInfo{{Name: "a", Kind: model.ExportValue}, {Name: "b", Kind: model.ExportValue}}

	idx := usage.Index{}
	idx.Add("src/Widget", usage.Default)
	idx.Add("src/store", usage.Namespace)

	files := []*model.FileNode{page, widget, store}

	if got := UnusedExports(files, idx, conventions.MustCompile(conventions.DefaultRuleSet()), testTime); len(got) != 0 {
		t.Errorf("Expected no warnings with conventions, got %v", got)
	}

	got := UnusedExports(files, idx, nil, testTime)
	if len(got) != 1 || got[0].AffectedNodes[0] != "page" {
		t.Errorf("Expected only the page default export without conventions, got %+v", got)
	}
}

func TestLargeFiles_Boundaries(t *testing.T) {
	const threshold = 500
	tests := []struct {
		lines int
		want  model.Level // empty means not flagged
	}{
		{threshold, ""},
		{threshold + 1, model.LevelInfo},
		{2 * threshold, model.LevelInfo},
		{2*threshold + 1, model.LevelWarning},
	}

	for _, tt := range tests {
		f := file("f", "src/big.ts")
		f.EndLine = tt.lines

		warnings := LargeFiles([]*model.FileNode{f}, threshold, testTime)
		if tt.want == "" {
			if len(warnings) != 0 {
				t.Errorf("%d lines: expected no warning, got %d", tt.lines, len(warnings))
			}
			continue
		}
		if len(warnings) != 1 || warnings[0].Level != tt.want {
			t.Errorf("%d lines: expected one %s warning, got %+v", tt.lines, tt.want, warnings)
		}
	}
}

func TestWarningID_Deterministic(t *testing.T) {
	a := WarningID(model.CategoryLargeFile, "f1")
	if a != WarningID(model.CategoryLargeFile, "f1") {
		t.Error("Expected identical ids for identical input")
	}
	if a == WarningID(model.CategoryOrphanedCode, "f1") {
		t.Error("Expected category to be part of the id")
	}
	if WarningID(model.CategoryUnusedExport, "ab", "c") == WarningID(model.CategoryUnusedExport, "a", "bc") {
		t.Error("Expected key parts to be separated")
	}
}
