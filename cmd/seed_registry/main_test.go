package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/estoque-cd/internal/infrastructure/memory"
)

func TestParseRegistry_Windows1252(t *testing.T) {
	src := "# exportado de la planilla\nsector;Eletrônicos\n\nunidad;MDC - São Gonçalo\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	records, err := parseRegistry(bytes.NewReader([]byte(encoded)), "windows-1252")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, record{kind: kindSector, name: "Eletrônicos"}, records[0])
	assert.Equal(t, record{kind: kindUnit, name: "MDC - São Gonçalo"}, records[1])
}

func TestParseRegistry_LineaInvalida(t *testing.T) {
	_, err := parseRegistry(strings.NewReader("sector;Pet\nbodega;Central\n"), "utf-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 2")

	_, err = parseRegistry(strings.NewReader("sector\n"), "utf-8")
	assert.Error(t, err)

	_, err = parseRegistry(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}

func TestApply_OmiteDuplicados(t *testing.T) {
	store := memory.NewSeeded()
	records := []record{
		{kind: kindSector, name: "Pet"},
		{kind: kindSector, name: "Jardinagem"},
		{kind: kindUnit, name: "MDC - CD"},
		{kind: kindUnit, name: "MDC - Niterói"},
	}

	added, skipped, err := apply(context.Background(), store.Repos().Registry, records, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, skipped)

	units, err := store.Repos().Registry.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Len(t, units, 8)
}
