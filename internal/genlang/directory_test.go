package genlang

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeLister struct {
	models []ModelInfo
	err    error
	calls  int
}

func (f *fakeLister) ListModels(ctx context.Context) ([]ModelInfo, error) {
	f.calls++
	return f.models, f.err
}

func genModel(name string) ModelInfo {
	return ModelInfo{Name: name, SupportedGenerationMethods: []string{"generateContent"}}
}

var testFallback = []string{"gemini-1.5-flash", "gemini-1.5-pro"}

func TestDirectory_Ranking(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{
		genModel("models/gemini-1.0-pro"),
		genModel("models/gemini-1.5-flash"),
		{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
		genModel("models/gemini-exp"),
	}}
	dir := NewDirectory(lister, []string{"flash", "pro"}, testFallback, time.Hour, zerolog.Nop())

	pool := dir.Pool(context.Background())

	want := []string{"gemini-1.5-flash", "gemini-1.0-pro", "gemini-exp"}
	if !reflect.DeepEqual(pool, want) {
		t.Errorf("pool = %v, want %v", pool, want)
	}
}

func TestDirectory_CachesWithinTTL(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{genModel("models/gemini-1.5-flash")}}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	dir.Pool(context.Background())
	dir.Pool(context.Background())

	if lister.calls != 1 {
		t.Errorf("lister called %d times, want 1", lister.calls)
	}
}

func TestDirectory_RefreshesAfterTTL(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{genModel("models/gemini-1.5-flash")}}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	current := time.Now()
	dir.now = func() time.Time { return current }

	dir.Pool(context.Background())
	current = current.Add(2 * time.Hour)
	dir.Pool(context.Background())

	if lister.calls != 2 {
		t.Errorf("lister called %d times, want 2 after TTL expiry", lister.calls)
	}
}

func TestDirectory_FallbackOnError(t *testing.T) {
	lister := &fakeLister{err: errors.New("network down")}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	pool := dir.Pool(context.Background())
	if !reflect.DeepEqual(pool, testFallback) {
		t.Errorf("pool = %v, want fallback %v", pool, testFallback)
	}
}

func TestDirectory_StaleBeatsFallback(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{genModel("models/gemini-1.5-flash")}}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	current := time.Now()
	dir.now = func() time.Time { return current }

	dir.Pool(context.Background())

	// Discovery breaks after the TTL; the stale pool keeps serving.
	lister.err = errors.New("listing broken")
	lister.models = nil
	current = current.Add(2 * time.Hour)

	pool := dir.Pool(context.Background())
	want := []string{"gemini-1.5-flash"}
	if !reflect.DeepEqual(pool, want) {
		t.Errorf("pool = %v, want stale %v", pool, want)
	}
}

func TestDirectory_Invalidate(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{genModel("models/gemini-1.5-flash")}}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	dir.Pool(context.Background())
	dir.Invalidate()
	dir.Pool(context.Background())

	if lister.calls != 2 {
		t.Errorf("lister called %d times, want 2 after Invalidate", lister.calls)
	}
}

func TestDirectory_EmptyDiscoveryUsesFallback(t *testing.T) {
	lister := &fakeLister{models: []ModelInfo{
		{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
	}}
	dir := NewDirectory(lister, []string{"flash"}, testFallback, time.Hour, zerolog.Nop())

	pool := dir.Pool(context.Background())
	if !reflect.DeepEqual(pool, testFallback) {
		t.Errorf("pool = %v, want fallback %v", pool, testFallback)
	}
}
