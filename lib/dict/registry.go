package dict

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"strings"
)

var Logger = logger.GetLogger("dict")

// Opener opens a map of one type. name is the part after "type:".
type Opener func(name string, flags Flags) (IDict, error)

var openers = xsync.NewMapOf[string, Opener]()

// Register makes a map type available to Open. Registering a type twice panics.
func Register(dictType string, opener Opener) {
	if _, loaded := openers.LoadOrStore(dictType, opener); loaded {
		panic(fmt.Sprintf("dict: type %s registered twice", dictType))
	}
}

// Types returns all registered map types, sorted
func Types() []string {
	var types []string
	openers.Range(func(key string, _ Opener) bool {
		types = append(types, key)
		return true
	})
	sort.Strings(types)
	return types
}

// Open opens the map "type:name". Every mode except ReadOnly is rejected.
func Open(spec string, mode OpenMode, flags Flags) (IDict, error) {
	dictType, name, ok := strings.Cut(spec, ":")
	if !ok || dictType == "" || name == "" {
		return nil, NewError(RetCConfig, fmt.Sprintf("invalid map %q (expected type:name)", spec))
	}
	if mode != ReadOnly {
		return nil, NewError(RetCConfig, fmt.Sprintf("%s map %s: %s access is not supported", dictType, name, mode))
	}

	opener, found := openers.Load(dictType)
	if !found {
		return nil, NewError(RetCConfig, fmt.Sprintf("unsupported map type %q (known: %s)", dictType, strings.Join(Types(), ", ")))
	}

	d, err := opener(name, flags)
	if err != nil {
		Logger.Errorf("cannot open %s: %v", spec, err)
		if _, isDictErr := err.(*Error); isDictErr {
			return nil, err
		}
		return nil, NewError(RetCConfig, err.Error())
	}
	Logger.Debugf("opened %s", spec)
	return d, nil
}
