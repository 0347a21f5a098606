package env

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ticketrush/ticketrush/internal/pkg/log"
)

// Files returns the ".env" file names, in the load order, the first has the highest priority.
func Files() []string {
	return []string{".env.local", ".env"}
}

// LoadDotEnv loads envs from ".env" files in the given dirs, OS envs have priority.
func LoadDotEnv(logger log.Logger, osEnvs *Map, dirs []string) *Map {
	out := osEnvs.Clone()
	for _, dir := range dirs {
		for _, file := range Files() {
			path := filepath.Join(dir, file)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			values, err := godotenv.Read(path)
			if err != nil {
				logger.Warnf(`cannot parse env file "%s": %s`, path, err)
				continue
			}
			logger.Debugf(`loaded env file "%s"`, path)
			out.Merge(FromMap(values), false)
		}
	}
	return out
}
