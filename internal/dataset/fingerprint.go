package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
)

// datasetNamespace scopes dataset ids so they never collide with other
// name-based UUIDs.
var datasetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/ecomkpi/dataset"))

// Fingerprint returns a stable id for the dataset p generates. The params
// are serialized as RFC 8785 canonical JSON and hashed into a version 5
// UUID, so equal params always give the same id.
func Fingerprint(p Params) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint: marshal params: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize params: %w", err)
	}
	return uuid.NewSHA1(datasetNamespace, canonical).String(), nil
}
