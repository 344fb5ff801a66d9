package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"qms-console/internal/api"
	"qms-console/internal/view"
)

// Row is one backend record. Resource payloads are schemaless on the client
// side; the field descriptors say which keys matter.
type Row map[string]any

// List holds the fetch/filter/paginate state one screen needs. Every resource
// family reuses this instead of reimplementing it.
type List struct {
	client     *api.Client
	descriptor Descriptor
	pageSize   int

	items   []Row
	query   string
	filters map[string]string
	page    int
}

func NewList(client *api.Client, descriptor Descriptor, pageSize int) *List {
	if pageSize <= 0 {
		pageSize = 8
	}
	return &List{
		client:     client,
		descriptor: descriptor,
		pageSize:   pageSize,
		filters:    map[string]string{},
		page:       1,
	}
}

func (l *List) Descriptor() Descriptor { return l.descriptor }

// Load fetches the collection and normalizes whatever shape came back.
func (l *List) Load(ctx context.Context) error {
	var raw json.RawMessage
	if err := l.client.Get(ctx, l.descriptor.Endpoint+"/", &raw); err != nil {
		return err
	}
	l.items = view.DecodeCollection[Row](raw)
	return nil
}

// SetQuery installs a substring filter over all field values and resets to
// the first page.
func (l *List) SetQuery(query string) {
	l.query = strings.ToLower(strings.TrimSpace(query))
	l.page = 1
}

// SetFilter installs an exact-match filter on one field and resets to the
// first page. An empty value removes the filter.
func (l *List) SetFilter(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(l.filters, key)
	} else {
		l.filters[key] = strings.ToLower(value)
	}
	l.page = 1
}

func (l *List) SetPage(page int) {
	l.page = page
}

// Rows returns the current page of the filtered collection plus the resolved
// page position.
func (l *List) Rows() (rows []Row, current, totalPages int) {
	return view.Paginate(l.filtered(), l.page, l.pageSize)
}

// Total reports how many rows survive the current filters.
func (l *List) Total() int {
	return len(l.filtered())
}

func (l *List) Create(ctx context.Context, values Row) (Row, error) {
	var created Row
	if err := l.client.Post(ctx, l.descriptor.Endpoint+"/", values, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (l *List) Update(ctx context.Context, id string, values Row) error {
	return l.client.Put(ctx, fmt.Sprintf("%s/%s/", l.descriptor.Endpoint, id), values, nil)
}

func (l *List) Delete(ctx context.Context, id string) error {
	return l.client.Delete(ctx, fmt.Sprintf("%s/%s/", l.descriptor.Endpoint, id))
}

// Value resolves a field against a row, honoring the alternate key.
func (l *List) Value(row Row, field Field) string {
	if value, ok := row[field.Key]; ok && value != nil {
		return stringify(value)
	}
	if field.AltKey != "" {
		if value, ok := row[field.AltKey]; ok && value != nil {
			return stringify(value)
		}
	}
	return ""
}

func (l *List) filtered() []Row {
	matched := make([]Row, 0, len(l.items))
	for _, row := range l.items {
		if l.matches(row) {
			matched = append(matched, row)
		}
	}
	return matched
}

func (l *List) matches(row Row) bool {
	for key, wanted := range l.filters {
		field := l.fieldByKey(key)
		if !strings.EqualFold(strings.TrimSpace(l.Value(row, field)), wanted) {
			return false
		}
	}
	if l.query == "" {
		return true
	}
	for _, field := range l.descriptor.Fields {
		if strings.Contains(strings.ToLower(l.Value(row, field)), l.query) {
			return true
		}
	}
	return false
}

func (l *List) fieldByKey(key string) Field {
	for _, field := range l.descriptor.Fields {
		if field.Key == key {
			return field
		}
	}
	return Field{Key: key}
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%g", typed)
	case bool:
		if typed {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", typed)
	}
}
