package oracle

import (
	"errors"
	"fmt"
)

var errFeatureConfigEmpty = errors.New("oracle: feature config has no features")

func fatalFeatureErrorf(index int, format string, args ...interface{}) error {
	return fmt.Errorf("oracle: feature[%d]: %s", index, fmt.Sprintf(format, args...))
}
