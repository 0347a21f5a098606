package env

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// Map of the environment variables, keys are case-insensitive.
type Map struct {
	lock *sync.Mutex
	data map[string]string
}

func Empty() *Map {
	return &Map{lock: &sync.Mutex{}, data: make(map[string]string)}
}

func FromMap(data map[string]string) *Map {
	m := Empty()
	for k, v := range data {
		m.Set(k, v)
	}
	return m
}

func FromOs() (*Map, error) {
	m := Empty()
	for _, pair := range os.Environ() {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, errors.Errorf(`unexpected environment variable format "%s"`, pair)
		}
		m.Set(key, value)
	}
	return m, nil
}

func (m *Map) Clone() *Map {
	return FromMap(m.ToMap())
}

func (m *Map) Keys() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Map) ToMap() map[string]string {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *Map) Lookup(key string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	v, ok := m.data[strings.ToUpper(key)]
	return v, ok
}

func (m *Map) Get(key string) string {
	v, _ := m.Lookup(key)
	return v
}

func (m *Map) Set(key, value string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.data[strings.ToUpper(key)] = value
}

func (m *Map) Unset(key string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.data, strings.ToUpper(key))
}

// Merge maps, on conflict keep the current value or overwrite it.
func (m *Map) Merge(data *Map, overwrite bool) {
	for k, v := range data.ToMap() {
		if _, found := m.Lookup(k); !found || overwrite {
			m.Set(k, v)
		}
	}
}
