package agents

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a materialized hierarchy path of the form "/1/5/9/". The last
// segment is always the agent's own id, the first is the root agent.
type Path string

// RootPath is the seed path of the platform root agent.
const RootPath Path = "/1/"

// ChildPath builds the path of a child created directly under p.
func (p Path) Child(id int64) Path {
	return Path(string(p) + strconv.FormatInt(id, 10) + "/")
}

// Segments returns the agent ids encoded in the path, root first.
func (p Path) Segments() ([]int64, error) {
	trimmed := strings.Trim(string(p), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("empty agent path %q", p)
	}

	parts := strings.Split(trimmed, "/")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed agent path %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Level is the depth of the path; the root agent is at level 1.
func (p Path) Level() int {
	return strings.Count(strings.Trim(string(p), "/"), "/") + 1
}

// Contains reports whether child is p itself or a descendant of p.
func (p Path) Contains(child Path) bool {
	return strings.HasPrefix(string(child), string(p))
}

// OwnID returns the last path segment.
func (p Path) OwnID() (int64, error) {
	ids, err := p.Segments()
	if err != nil {
		return 0, err
	}
	return ids[len(ids)-1], nil
}

// ParentPath returns the path without its last segment, or "" for the root.
func (p Path) ParentPath() Path {
	ids, err := p.Segments()
	if err != nil || len(ids) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString("/")
	for _, id := range ids[:len(ids)-1] {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteString("/")
	}
	return Path(b.String())
}
