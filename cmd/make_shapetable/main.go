// make_shapetable compiles a ruleset into the shape table interchange
// format.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

func main() {
	rulesetPath := flag.String("ruleset", "", "ruleset file (json or yaml); a built-in ruleset is used if empty")
	name := flag.String("name", "guideline", "built-in ruleset to use when -ruleset is empty")
	out := flag.String("out", "", "output file, gzipped if it ends in .gz; stdout if empty")
	flag.Parse()

	var rs *ruleset.Ruleset
	var err error
	if *rulesetPath != "" {
		rs, err = ruleset.Load(*rulesetPath)
	} else {
		rs, err = ruleset.Named(*name)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("loading-ruleset")
	}
	st, err := shapetable.Build(rs)
	if err != nil {
		log.Fatal().Err(err).Msg("building-shapetable")
	}

	if *out == "" {
		err = st.Write(os.Stdout)
	} else {
		err = st.Save(*out)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("writing-shapetable")
	}
	log.Info().Str("ruleset", st.Name()).Uint64("checksum", st.Checksum()).Msg("wrote-shapetable")
}
