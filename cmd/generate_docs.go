package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate tool documentation",
		Long: `Generate markdown documentation for all tools available to the assistant.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// toolCategory is one registration group and its tools.
type toolCategory struct {
	Name  string
	Tools []mcp.Tool
}

func runGenerateDocs(outputFile string) error {
	// No credentials are needed to describe the tools.
	serverContext, err := server.NewServerContext(context.Background(), server.Options{Config: &config.Config{}})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	categories, err := collectToolCategories(serverContext)
	if err != nil {
		return err
	}
	markdown := generateToolsMarkdown(categories)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// collectToolCategories registers each tool group on its own server so the
// tools can be listed per group.
func collectToolCategories(sc *server.ServerContext) ([]toolCategory, error) {
	categories := make([]toolCategory, 0, len(tools.Registrations))
	for _, reg := range tools.Registrations {
		mcpSrv := mcpserver.NewMCPServer(config.AppName, version, mcpserver.WithToolCapabilities(true))
		if err := reg.Register(mcpSrv, sc); err != nil {
			return nil, fmt.Errorf("failed to register %s tools: %w", reg.Name, err)
		}

		category := toolCategory{Name: reg.Name + " Tools"}
		for _, serverTool := range mcpSrv.ListTools() {
			category.Tools = append(category.Tools, serverTool.Tool)
		}
		sort.Slice(category.Tools, func(i, j int) bool {
			return category.Tools[i].Name < category.Tools[j].Name
		})
		categories = append(categories, category)
	}
	return categories, nil
}

func generateToolsMarkdown(categories []toolCategory) string {
	var sb strings.Builder

	sb.WriteString("# Tools Reference\n\n")
	sb.WriteString("This document lists every tool the assistant can call in chat and exposes when running `assistant serve`.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category.Name, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category.Name, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Optional Integrations\n\n")
	sb.WriteString("Maps, weather and web search tools need API keys. Without one they answer with a message naming the missing setting:\n\n")
	sb.WriteString("- **Maps:** `GOOGLE_MAPS_API_KEY`\n")
	sb.WriteString("- **Weather:** `WEATHER_API_KEY` (QWeather, `key` or `host,key`)\n")
	sb.WriteString("- **Web search:** `TAVILY_API_KEY`, or `GOOGLE_SEARCH_API_KEY` with `GOOGLE_SEARCH_ENGINE_ID`\n\n")

	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("## %s\n\n", category.Name))
		for _, tool := range category.Tools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}
			if enum, ok := propMap["enum"].([]string); ok && len(enum) > 0 {
				sb.WriteString(fmt.Sprintf(" One of: `%s`.", strings.Join(enum, "`, `")))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
