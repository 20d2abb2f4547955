package callbacks

import (
	"net/url"
	"strconv"
	"strings"
)

// Callback is a parsed inline button payload. The wire format is
// "name?key=value&key=value"; the query part is optional.
type Callback struct {
	Name string
	Args url.Values
}

func Parse(data string) (Callback, error) {
	name, rawArgs, found := strings.Cut(data, "?")
	if !found {
		return Callback{Name: name, Args: url.Values{}}, nil
	}

	args, err := url.ParseQuery(rawArgs)
	if err != nil {
		return Callback{}, err
	}
	return Callback{Name: name, Args: args}, nil
}

// Int64Arg reads one numeric argument; missing or malformed values come back
// as zero.
func (c Callback) Int64Arg(key string) int64 {
	v, err := strconv.ParseInt(c.Args.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Data builds a button payload from a name and key/value pairs.
func Data(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}

	values := url.Values{}
	for i := 0; i+1 < len(args); i += 2 {
		values.Set(args[i], args[i+1])
	}
	return name + "?" + values.Encode()
}
