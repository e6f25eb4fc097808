package pipeline

import "github.com/sjc5/kit/pkg/typed"

var cache = struct {
	matchResults typed.SyncMap[string, bool]
}{
	matchResults: typed.SyncMap[string, bool]{},
}
