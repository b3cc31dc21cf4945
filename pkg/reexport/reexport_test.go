package reexport

import (
	"reflect"
	"testing"

	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/resolve"
)

func barrel() *model.FileNode {
	return &model.FileNode{
		ID:       "barrel",
		FilePath: "src/lib/index.ts",
		Exports: []model.ExportInfo{
			{Name: "Foo", Alias: "Bar", Kind: model.ExportReexport, Source: "./Foo"},
			{Name: "helper", Kind: model.ExportReexport, Source: "./helpers.ts"},
			{Name: "*", Kind: model.ExportReexport, Source: "./utils"},
			{Name: "*", Alias: "ns", Kind: model.ExportReexport, Source: "../ns"},
			{Name: "react", Kind: model.ExportReexport, Source: "react"},
			{Name: "local", Kind: model.ExportValue},
		},
	}
}

func TestBuild_Named(t *testing.T) {
	m := Build([]*model.FileNode{barrel()}, resolve.NewResolver(nil))

	for _, key := range []string{"src/lib/index", "src/lib"} {
		entry, ok := m.Lookup(key, "Bar")
		if !ok {
			t.Fatalf("Expected Bar under %s", key)
		}
		if entry.Source != "src/lib/Foo" || entry.OriginalName != "Foo" {
			t.Errorf("Unexpected entry under %s: %+v", key, entry)
		}
	}

	if _, ok := m.Lookup("src/lib", "Foo"); ok {
		t.Error("Expected lookup by original name to miss")
	}
	if entry, _ := m.Lookup("src/lib", "helper"); entry.Source != "src/lib/helpers" {
		t.Errorf("Expected extension stripped source, got %s", entry.Source)
	}
	if entry, ok := m.Lookup("src/lib", "ns"); !ok || entry.OriginalName != "*" || entry.Source != "src/ns" {
		t.Errorf("Expected namespace re-export entry, got %+v (found=%v)", entry, ok)
	}
	if _, ok := m.Lookup("src/lib", "react"); ok {
		t.Error("Expected bare re-export to be ignored")
	}
	if _, ok := m.Lookup("src/lib", "local"); ok {
		t.Error("Expected plain export to be ignored")
	}
}

func TestBuild_Star(t *testing.T) {
	m := Build([]*model.FileNode{barrel()}, resolve.NewResolver(nil))

	want := []string{"src/lib/utils"}
	for _, key := range []string{"src/lib/index", "src/lib"} {
		if got := m.StarSources(key); !reflect.DeepEqual(got, want) {
			t.Errorf("StarSources(%s) = %v, want %v", key, got, want)
		}
	}
}

func TestBuild_NonIndexKeyedOnce(t *testing.T) {
	file := &model.FileNode{
		ID:       "f",
		FilePath: "src/api.ts",
		Exports: []model.ExportInfo{
			{Name: "*", Kind: model.ExportReexport, Source: "./a"},
			{Name: "*", Kind: model.ExportReexport, Source: "./a"},
		},
	}
	m := Build([]*model.FileNode{file}, resolve.NewResolver(nil))

	if len(m.Star) != 1 {
		t.Errorf("Expected a single barrel key, got %v", m.Star)
	}
	if got := m.StarSources("src/api"); len(got) != 1 {
		t.Errorf("Expected duplicate star source to be deduplicated, got %v", got)
	}
}

func TestBuild_Aliased(t *testing.T) {
	file := &model.FileNode{
		ID:       "f",
		FilePath: "src/index.ts",
		Exports:  []model.ExportInfo{{Name: "db", Kind: model.ExportReexport, Source: "@/lib/db"}},
	}
	aliases := resolve.CompileAliases([]resolve.Alias{{Pattern: "@/*", Targets: []string{"src/*"}}})
	m := Build([]*model.FileNode{file}, resolve.NewResolver(aliases))

	if entry, ok := m.Lookup("src", "db"); !ok || entry.Source != "src/lib/db" {
		t.Errorf("Expected aliased source src/lib/db, got %+v", entry)
	}
}

func TestNamedEntries(t *testing.T) {
	m := Build([]*model.FileNode{barrel()}, resolve.NewResolver(nil))
	entries := m.NamedEntries("src/lib")
	if len(entries) != 3 {
		t.Fatalf("Expected 3 named entries, got %d", len(entries))
	}
	// Ordered by exported name: Bar, helper, ns
	if entries[0].OriginalName != "Foo" || entries[2].OriginalName != "*" {
		t.Errorf("Unexpected order: %+v", entries)
	}
}
