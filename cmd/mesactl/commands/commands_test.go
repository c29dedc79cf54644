package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/report"
	"github.com/iliyamo/wedding-seating/internal/utils"
)

func sampleView() report.View {
	snap := model.Snapshot{
		Headers: []string{"Nombre", "+1", "Mesa"},
		Rows: [][]string{
			{"Ana", "no", "Mesa 1"},
			{"Bea", "si", "1"},
			{"Carlos", "no", ""},
		},
		Columns: model.ColumnMap{Name: 0, PlusOne: 1, Table: 2, Group: -1, Attending: -1},
		Source:  model.SourceTag{SpreadsheetID: "sheet-1", SheetName: "Invitados"},
	}
	return report.Build(snap, time.Date(2026, 5, 9, 18, 0, 0, 0, time.UTC))
}

func TestRenderReportTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, sampleView(), "table"))

	out := buf.String()
	assert.Contains(t, out, "TABLE")
	assert.Contains(t, out, "Mesa 1")
	assert.Contains(t, out, "Mesa Novios")
	assert.Contains(t, out, "3 guests (1 with +1, 0 declined)")
	assert.Contains(t, out, "unassigned: 1")
	assert.Contains(t, out, "row 4  Carlos")
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, sampleView(), "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	meta := got["meta"].(map[string]any)
	assert.EqualValues(t, 3, meta["totalUsed"])
	assert.Len(t, got["tables"], 36)
}

func TestRenderReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, sampleView(), "yaml"))

	var got struct {
		Source struct {
			SpreadsheetID string `yaml:"spreadsheetId"`
		} `yaml:"source"`
		Meta struct {
			Unassigned int `yaml:"unassigned"`
		} `yaml:"meta"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "sheet-1", got.Source.SpreadsheetID)
	assert.Equal(t, 1, got.Meta.Unassigned)
}

func TestRenderReportUnknownFormat(t *testing.T) {
	err := renderReport(&bytes.Buffer{}, sampleView(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestHashPasswordCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"hash-password", "--cost", "4", "s3cret"})
	require.NoError(t, rootCmd.Execute())

	hash := strings.TrimSpace(buf.String())
	assert.True(t, utils.VerifyPassword(hash, "s3cret"))
	assert.False(t, utils.VerifyPassword(hash, "other"))
}

func TestHashPasswordFromStdin(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("from-stdin\n"))
	rootCmd.SetArgs([]string{"hash-password", "--cost", "4"})
	require.NoError(t, rootCmd.Execute())

	assert.True(t, utils.VerifyPassword(strings.TrimSpace(buf.String()), "from-stdin"))
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc")
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "mesactl 1.2.3 (commit: abc)\n", buf.String())
}
