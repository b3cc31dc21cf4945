// Package detect holds the warning detectors. Each detector is a pure
// function of its inputs; none mutates the graph.
package detect

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ritzau/codewarn/pkg/model"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ritzau/codewarn/warnings"))

// WarningID derives a stable id from the category and the finding's key
// parts, so unchanged code yields the same ids on every run.
func WarningID(category model.Category, key ...string) string {
	name := string(category) + "\x00" + strings.Join(key, "\x00")
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
