package disaster

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/claimsat/internal/models"
)

var now = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

func ids(disasters []models.Disaster) []string {
	out := make([]string, 0, len(disasters))
	for _, d := range disasters {
		out = append(out, d.ID)
	}
	return out
}

func TestMemRegistry(t *testing.T) {
	reg := NewMemRegistry(Samples()...)

	d, ok := reg.GetByID("dis-002")
	if !ok || d.Name != "Gujarat Earthquake 2024" {
		t.Errorf("GetByID(dis-002) = %v, %v", d.Name, ok)
	}
	if _, ok := reg.GetByID("dis-404"); ok {
		t.Error("GetByID(dis-404) found a disaster")
	}

	reg.Put(models.Disaster{ID: "dis-000", Status: models.DisasterResolved})

	if diff := cmp.Diff([]string{"dis-000", "dis-001", "dis-002", "dis-003"}, ids(reg.List())); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"dis-001", "dis-002", "dis-003"}, ids(reg.GetActive())); diff != "" {
		t.Errorf("GetActive() mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	reg := NewMemRegistry(Samples()...)

	d, err := Lookup(reg, "dis-003")
	if err != nil || d.ID != "dis-003" {
		t.Errorf("Lookup(dis-003) = %v, %v", d.ID, err)
	}
	if _, err := Lookup(reg, "dis-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(dis-404) error = %v, want ErrNotFound", err)
	}
}

func TestFindMatching(t *testing.T) {
	reg := NewMemRegistry(Samples()...)

	tests := []struct {
		name     string
		point    models.Point
		incident time.Time
		wantID   string
		wantOK   bool
	}{
		{"inside kerala during floods", models.Point{Lat: 10.95, Lng: 76.35}, time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC), "dis-001", true},
		{"inside uttarakhand", models.Point{Lat: 30.4, Lng: 78.7}, time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), "dis-003", true},
		{"far from everything, years earlier", models.Point{Lat: 28.61, Lng: 77.21}, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, score, ok := FindMatching(reg, tt.point, tt.incident, now)
			if ok != tt.wantOK {
				t.Fatalf("FindMatching() ok = %v, want %v", ok, tt.wantOK)
			}
			if d.ID != tt.wantID {
				t.Errorf("FindMatching() = %s, want %s", d.ID, tt.wantID)
			}
			if ok && score <= MinContextScore {
				t.Errorf("FindMatching() score = %v, want > %v", score, MinContextScore)
			}
		})
	}
}

func TestVerifyContext(t *testing.T) {
	reg := NewMemRegistry(Samples()...)

	ok, related := VerifyContext(reg, time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("VerifyContext() = false, want true")
	}
	if diff := cmp.Diff([]string{"dis-001", "dis-003"}, ids(related)); diff != "" {
		t.Errorf("VerifyContext() mismatch (-want +got):\n%s", diff)
	}

	if ok, related := VerifyContext(reg, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)); ok || len(related) != 0 {
		t.Errorf("VerifyContext(2023) = %v, %v", ok, ids(related))
	}
}

func TestNear(t *testing.T) {
	reg := NewMemRegistry(Samples()...)
	// about 11km north of the Kerala polygon
	p := models.Point{Lat: 11.2, Lng: 76.35}

	if got := ids(Near(reg, p, 20)); !cmp.Equal(got, []string{"dis-001"}) {
		t.Errorf("Near(20km) = %v, want [dis-001]", got)
	}
	if got := Near(reg, p, 5); len(got) != 0 {
		t.Errorf("Near(5km) = %v, want none", ids(got))
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	data, err := ToGeoJSON(Samples())
	if err != nil {
		t.Fatalf("ToGeoJSON() error = %v", err)
	}

	got, err := LoadGeoJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadGeoJSON() error = %v", err)
	}

	if diff := cmp.Diff(Samples(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", "{", "failed to parse"},
		{
			"point geometry",
			`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[76.3,10.9]},"properties":{"id":"x","start_date":"2024-07-15"}}]}`,
			"Polygon",
		},
		{
			"missing start",
			`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"id":"x"}}]}`,
			"start_date",
		},
		{
			"missing id",
			`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"start_date":"2024-07-15"}}]}`,
			"missing id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGeoJSON(strings.NewReader(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadGeoJSON() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadGeoJSONDefaults(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[{"type":"Feature","id":"fire-9",
		"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},
		"properties":{"start_date":"2024-03-01T06:00:00+05:30"}}]}`

	got, err := LoadGeoJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("LoadGeoJSON() error = %v", err)
	}
	d := got[0]
	if d.ID != "fire-9" || d.Name != "fire-9" {
		t.Errorf("LoadGeoJSON() id/name = %s/%s", d.ID, d.Name)
	}
	if d.Status != models.DisasterActive || d.Type != models.DisasterOther || d.Epicenter != nil || d.EndDate != nil {
		t.Errorf("LoadGeoJSON() defaults = %+v", d)
	}
	if want := time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC); !d.StartDate.Equal(want) {
		t.Errorf("LoadGeoJSON() start = %v, want %v", d.StartDate, want)
	}
}
