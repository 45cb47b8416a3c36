package main

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casegraph/infrastructure/config"
	"casegraph/infrastructure/di"
	"casegraph/interfaces/render"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()

	cfg := config.Defaults()
	cfg.Server.Environment = "test"
	cfg.Store.FixturePath = filepath.Join("..", "..", "fixtures", "demo.yaml")
	cfg.LogLevel = "error"

	c, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNetworkCommand(t *testing.T) {
	server := startServer(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "network", "C-100", "--server", server)

		require.NoError(t, err)
		assert.Contains(t, out, "Case C-100")
		assert.Contains(t, out, "Clusters 1")
		assert.Contains(t, out, "transaction:T-1")
		assert.Contains(t, out, "₩1,200,000")
		assert.Contains(t, out, "CRITICAL")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "network", "C-100", "--json", "--server", server)

		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Contains(t, body, "nodes")
		assert.Contains(t, body, "stats")
	})

	t.Run("employee", func(t *testing.T) {
		out, err := run(t, "network", "E-1", "--employee", "--limit", "2", "--server", server)

		require.NoError(t, err)
		assert.Contains(t, out, "Employee E-1")
	})

	t.Run("unknown case", func(t *testing.T) {
		_, err := run(t, "network", "C-999", "--server", server)

		require.Error(t, err)
		assert.Equal(t, "Case not found", err.Error())
	})
}

func TestRelatedCommand(t *testing.T) {
	server := startServer(t)

	out, err := run(t, "related", "C-100", "--server", server)

	require.NoError(t, err)
	assert.Contains(t, out, "T-2")
	assert.NotContains(t, out, "T-3")
}

func TestRenderCommand(t *testing.T) {
	server := startServer(t)

	t.Run("svg to stdout", func(t *testing.T) {
		out, err := run(t, "render", "C-100", "--server", server)

		require.NoError(t, err)
		dec := xml.NewDecoder(strings.NewReader(out))
		for {
			_, err := dec.Token()
			if err != nil {
				assert.Equal(t, "EOF", err.Error())
				break
			}
		}
		assert.Contains(t, out, `data-id="case:C-100"`)
	})

	t.Run("html to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "case.html")

		_, err := run(t, "render", "C-100", "-f", "html", "-o", path, "--select", "employee:E-1", "--server", server)

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "d3")
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := run(t, "render", "C-100", "--select", "employee:E-404", "--server", server)

		assert.Error(t, err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := run(t, "render", "C-100", "-f", "png", "--server", server)

		assert.Error(t, err)
	})
}

func TestInspectCommand(t *testing.T) {
	server := startServer(t)

	t.Run("prompt without node", func(t *testing.T) {
		out, err := run(t, "inspect", "C-100", "--server", server)

		require.NoError(t, err)
		assert.Contains(t, out, render.InspectorPrompt)
		assert.Contains(t, out, "employee:E-1")
	})

	t.Run("node details", func(t *testing.T) {
		out, err := run(t, "inspect", "C-100", "transaction:T-1", "--server", server)

		require.NoError(t, err)
		assert.Contains(t, out, "Node Details")
		assert.Contains(t, out, "CRITICAL !")
		assert.Contains(t, out, "₩1,200,000")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "inspect", "C-100", "employee:E-1", "--json", "--server", server)

		require.NoError(t, err)
		var panel render.Panel
		require.NoError(t, json.Unmarshal([]byte(out), &panel))
		assert.Equal(t, "Sales", panel.Department)
	})
}

func TestServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	_, err := run(t, "related", "C-100", "--server", url)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reach "+url)
}
