package ruleset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"
)

func TestGuidelineShape(t *testing.T) {
	is := is.New(t)
	rs := Guideline()
	is.Equal(len(rs.Pieces), 7)
	for _, p := range rs.Pieces {
		is.True(len(p.Shapes) == 1 || len(p.Shapes) == 4)
		if p.Kicks != "" {
			_, ok := rs.Kicks[p.Kicks]
			is.True(ok)
		}
	}
	is.Equal(TransitionKey(3, 0), "3>0")
}

func TestParseRoundTrip(t *testing.T) {
	is := is.New(t)
	rs := Guideline()

	js, err := json.Marshal(rs)
	is.NoErr(err)
	fromJSON, err := Parse(js, "json")
	is.NoErr(err)
	is.Equal(fromJSON, rs)

	ym, err := yaml.Marshal(rs)
	is.NoErr(err)
	fromYAML, err := Parse(ym, "YAML")
	is.NoErr(err)
	is.Equal(fromYAML, rs)

	_, err = Parse(js, "toml")
	is.True(err != nil)
	_, err = Parse([]byte("{"), "json")
	is.True(err != nil)
}

func TestLoadByExtension(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	ym, err := yaml.Marshal(Guideline())
	is.NoErr(err)
	path := filepath.Join(dir, "srs.yaml")
	is.NoErr(os.WriteFile(path, ym, 0o644))
	rs, err := Load(path)
	is.NoErr(err)
	is.Equal(rs.Name, "guideline")

	_, err = Named("nonexistent")
	is.True(err != nil)
	g, err := Named("SRS")
	is.NoErr(err)
	is.Equal(g.Name, "guideline")
}
