package contentclient

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const maxPageSize = 100

var (
	typeTagPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	fieldPattern    = regexp.MustCompile(`^[a-z]+(\.[A-Za-z0-9_]+)+$`)
	predicateQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// at renders a single at(field,"value") predicate.
func at(field, value string) string {
	return fmt.Sprintf(`[at(%s,"%s")]`, field, predicateQuoter.Replace(value))
}

// query wraps predicates into the q parameter form: [[at(...)][at(...)]].
func query(predicates ...string) string {
	return "[" + strings.Join(predicates, "") + "]"
}

func typePredicate(typeTag string) (string, error) {
	if !typeTagPattern.MatchString(typeTag) {
		return "", fmt.Errorf("%w: invalid document type %q", ErrSourceQueryInvalid, typeTag)
	}
	return at("document.type", typeTag), nil
}

func uidPredicate(typeTag, uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("%w: empty uid", ErrSourceQueryInvalid)
	}
	return at("my."+typeTag+".uid", uid), nil
}

func idPredicate(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty document id", ErrSourceQueryInvalid)
	}
	return at("document.id", id), nil
}

// encodeOrderings renders orderings as "[field desc,field2]".
func encodeOrderings(orderings []Ordering) (string, error) {
	if len(orderings) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orderings))
	for _, o := range orderings {
		if !fieldPattern.MatchString(o.Field) {
			return "", fmt.Errorf("%w: invalid ordering field %q", ErrSourceQueryInvalid, o.Field)
		}
		switch o.Direction {
		case Desc:
			parts = append(parts, o.Field+" desc")
		case Asc, "":
			parts = append(parts, o.Field)
		default:
			return "", fmt.Errorf("%w: invalid ordering direction %q", ErrSourceQueryInvalid, o.Direction)
		}
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}

func validatePaging(opts QueryOptions) error {
	if opts.PageSize < 0 || opts.PageSize > maxPageSize {
		return fmt.Errorf("%w: page size %d out of range", ErrSourceQueryInvalid, opts.PageSize)
	}
	if opts.Page < 0 {
		return fmt.Errorf("%w: negative page %d", ErrSourceQueryInvalid, opts.Page)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
