package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// renderRichText folds a rich text array into inline markdown, applying
// annotations and links.
func renderRichText(segments []RichText) string {
	var sb strings.Builder
	for _, segment := range segments {
		text := segment.PlainText
		if segment.Annotations.Code {
			text = "`" + text + "`"
		}
		if segment.Annotations.Bold {
			text = "**" + text + "**"
		}
		if segment.Annotations.Italic {
			text = "*" + text + "*"
		}
		if segment.Annotations.Strikethrough {
			text = "~~" + text + "~~"
		}
		if segment.Href != "" {
			text = "[" + text + "](" + segment.Href + ")"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// richTextOf tolerates blocks whose payload is missing from the API
// response; they render as empty text rather than failing the page.
func richTextOf(value *RichTextValue) string {
	if value == nil {
		return ""
	}
	return renderRichText(value.RichText)
}

// pageTitle extracts the page title from its properties. Database rows
// usually carry the title under "Name"; plain pages under "title"; any
// property of type title works as a fallback.
func pageTitle(page *Page) string {
	props := page.Properties
	if len(props) == 0 {
		return "Untitled"
	}

	if prop, ok := props["title"]; ok && len(prop.Title) > 0 {
		return renderRichText(prop.Title)
	}
	if prop, ok := props["Name"]; ok && prop.Type == "title" && len(prop.Title) > 0 {
		return renderRichText(prop.Title)
	}
	for _, prop := range props {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return renderRichText(prop.Title)
		}
	}
	return "Untitled"
}

// blockToMarkdown converts a single block to markdown. filesPath is the
// relative path from the document to the downloaded-files directory;
// indent is the nesting level for list children.
func blockToMarkdown(block *Block, filesPath string, indent int) string {
	prefix := strings.Repeat("  ", indent)

	switch block.Type {
	case "paragraph":
		return prefix + richTextOf(block.Paragraph) + "\n"

	case "heading_1":
		return prefix + "# " + richTextOf(block.Heading1) + "\n"
	case "heading_2":
		return prefix + "## " + richTextOf(block.Heading2) + "\n"
	case "heading_3":
		return prefix + "### " + richTextOf(block.Heading3) + "\n"

	case "bulleted_list_item":
		result := prefix + "- " + richTextOf(block.BulletedListItem) + "\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent+1)
		}
		return result

	case "numbered_list_item":
		result := prefix + "1. " + richTextOf(block.NumberedListItem) + "\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent+1)
		}
		return result

	case "to_do":
		checkbox := "[ ]"
		var text string
		if block.ToDo != nil {
			if block.ToDo.Checked {
				checkbox = "[x]"
			}
			text = renderRichText(block.ToDo.RichText)
		}
		result := prefix + "- " + checkbox + " " + text + "\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent+1)
		}
		return result

	case "toggle":
		result := prefix + "<details>\n" + prefix + "<summary>" + richTextOf(block.Toggle) + "</summary>\n\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent)
		}
		result += prefix + "</details>\n"
		return result

	case "quote":
		lines := strings.Split(richTextOf(block.Quote), "\n")
		for i, line := range lines {
			lines[i] = prefix + "> " + line
		}
		result := strings.Join(lines, "\n") + "\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent+1)
		}
		return result

	case "callout":
		emoji := "💡"
		var text string
		if block.Callout != nil {
			if block.Callout.Icon != nil && block.Callout.Icon.Type == "emoji" && block.Callout.Icon.Emoji != "" {
				emoji = block.Callout.Icon.Emoji
			}
			text = renderRichText(block.Callout.RichText)
		}
		result := prefix + "> " + emoji + " " + text + "\n"
		if block.Children != nil {
			result += blocksToMarkdown(block.Children, filesPath, indent+1)
		}
		return result

	case "code":
		language := ""
		var text string
		if block.Code != nil {
			language = block.Code.Language
			text = renderRichText(block.Code.RichText)
		}
		return prefix + "```" + language + "\n" + text + "\n" + prefix + "```\n"

	case "divider":
		return prefix + "---\n"

	case "image":
		if block.Image == nil {
			return prefix + "![image](missing-image)\n"
		}
		alt := renderRichText(block.Image.Caption)
		if alt == "" {
			alt = "image"
		}
		switch {
		case block.Image.File != nil:
			filename := generateFilename(block.Image.File.URL, block.ID)
			return fmt.Sprintf("%s![%s](%s/%s)\n", prefix, alt, filesPath, filename)
		case block.Image.External != nil:
			return fmt.Sprintf("%s![%s](%s)\n", prefix, alt, block.Image.External.URL)
		}
		return fmt.Sprintf("%s![%s](missing-image)\n", prefix, alt)

	case "file", "pdf", "video", "audio":
		media := block.mediaValue()
		if media == nil {
			return fmt.Sprintf("%s[%s](missing-file)\n", prefix, block.Type)
		}
		name := renderRichText(media.Caption)
		if name == "" {
			name = block.Type
		}
		switch {
		case media.File != nil:
			filename := generateFilename(media.File.URL, block.ID)
			return fmt.Sprintf("%s[%s](%s/%s)\n", prefix, name, filesPath, filename)
		case media.External != nil:
			return fmt.Sprintf("%s[%s](%s)\n", prefix, name, media.External.URL)
		}
		return fmt.Sprintf("%s[%s](missing-file)\n", prefix, name)

	case "bookmark":
		if block.Bookmark == nil {
			return ""
		}
		title := renderRichText(block.Bookmark.Caption)
		if title == "" {
			title = block.Bookmark.URL
		}
		return fmt.Sprintf("%s[%s](%s)\n", prefix, title, block.Bookmark.URL)

	case "table":
		return tableToMarkdown(block, prefix)

	case "column_list", "column", "synced_block":
		if block.Children != nil {
			return blocksToMarkdown(block.Children, filesPath, indent)
		}
		return ""

	case "equation":
		expression := ""
		if block.Equation != nil {
			expression = block.Equation.Expression
		}
		return prefix + "$$\n" + expression + "\n$$\n"

	case "link_preview":
		if block.LinkPreview == nil {
			return ""
		}
		return fmt.Sprintf("%s[%s](%s)\n", prefix, block.LinkPreview.URL, block.LinkPreview.URL)
	case "embed":
		if block.Embed == nil {
			return ""
		}
		return fmt.Sprintf("%s[%s](%s)\n", prefix, block.Embed.URL, block.Embed.URL)

	case "child_page":
		title := "Untitled"
		if block.ChildPage != nil && block.ChildPage.Title != "" {
			title = block.ChildPage.Title
		}
		return fmt.Sprintf("%s📄 [%s]()\n", prefix, title)

	case "child_database":
		title := "Untitled Database"
		if block.ChildDatabase != nil && block.ChildDatabase.Title != "" {
			title = block.ChildDatabase.Title
		}
		return fmt.Sprintf("%s🗃️ [%s]()\n", prefix, title)

	case "table_of_contents":
		return prefix + "[Table of Contents]\n"

	case "breadcrumb":
		return ""
	}

	// Unknown types degrade visibly instead of being dropped.
	return fmt.Sprintf("%s<!-- Unsupported block type: %s -->\n", prefix, block.Type)
}

func tableToMarkdown(block *Block, prefix string) string {
	if len(block.Children) == 0 {
		return ""
	}

	var lines []string
	for i := range block.Children {
		row := &block.Children[i]
		if row.Type != "table_row" || row.TableRow == nil {
			continue
		}
		cells := make([]string, len(row.TableRow.Cells))
		for j, cell := range row.TableRow.Cells {
			cells[j] = renderRichText(cell)
		}
		lines = append(lines, prefix+"| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			separators := make([]string, len(cells))
			for j := range separators {
				separators[j] = "---"
			}
			lines = append(lines, prefix+"|"+strings.Join(separators, "|")+"|")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// blocksToMarkdown converts a block sequence to markdown, one blank line
// between blocks.
func blocksToMarkdown(blocks []Block, filesPath string, indent int) string {
	var parts []string
	for i := range blocks {
		if md := blockToMarkdown(&blocks[i], filesPath, indent); md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n")
}

// propertyValue extracts a frontmatter-friendly value from a property, or
// nil when the property carries nothing representable.
func propertyValue(prop Property) any {
	switch prop.Type {
	case "title":
		return renderRichText(prop.Title)
	case "rich_text":
		return renderRichText(prop.RichText)
	case "number":
		if prop.Number != nil {
			return *prop.Number
		}
	case "select":
		if prop.Select != nil {
			return prop.Select.Name
		}
	case "multi_select":
		names := make([]string, len(prop.MultiSelect))
		for i, opt := range prop.MultiSelect {
			names[i] = opt.Name
		}
		return names
	case "status":
		if prop.Status != nil {
			return prop.Status.Name
		}
	case "date":
		if prop.Date != nil {
			return prop.Date.Start
		}
	case "checkbox":
		if prop.Checkbox != nil {
			return *prop.Checkbox
		}
	case "url":
		if prop.URL != nil {
			return *prop.URL
		}
	case "email":
		if prop.Email != nil {
			return *prop.Email
		}
	case "phone_number":
		if prop.PhoneNumber != nil {
			return *prop.PhoneNumber
		}
	case "people":
		names := make([]string, len(prop.People))
		for i, person := range prop.People {
			if person.Name != "" {
				names[i] = person.Name
			} else {
				names[i] = person.ID
			}
		}
		return names
	case "files":
		names := make([]string, len(prop.Files))
		for i, file := range prop.Files {
			if file.Name != "" {
				names[i] = file.Name
			} else {
				names[i] = "file"
			}
		}
		return names
	case "relation":
		ids := make([]string, len(prop.Relation))
		for i, rel := range prop.Relation {
			ids[i] = rel.ID
		}
		return ids
	case "formula":
		return computedValue(prop.Formula)
	case "rollup":
		return computedValue(prop.Rollup)
	case "created_time":
		if prop.CreatedTime != "" {
			return prop.CreatedTime
		}
	case "created_by":
		if prop.CreatedBy != nil {
			return prop.CreatedBy.Name
		}
	case "last_edited_time":
		if prop.LastEditedTime != "" {
			return prop.LastEditedTime
		}
	case "last_edited_by":
		if prop.LastEditedBy != nil {
			return prop.LastEditedBy.Name
		}
	}
	return nil
}

func computedValue(value *ComputedValue) any {
	if value == nil {
		return nil
	}
	switch value.Type {
	case "string":
		if value.String != nil {
			return *value.String
		}
	case "number":
		if value.Number != nil {
			return *value.Number
		}
	case "boolean":
		if value.Boolean != nil {
			return *value.Boolean
		}
	case "date":
		if value.Date != nil {
			return value.Date.Start
		}
	}
	return nil
}

// pageMetadata is the frontmatter layout; field order is preserved by
// yaml.v3 when marshaling structs.
type pageMetadata struct {
	NotionID   string         `yaml:"notion_id"`
	Created    string         `yaml:"created"`
	LastEdited string         `yaml:"last_edited"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// pageFrontmatter generates YAML frontmatter (including delimiters) from
// page metadata and non-title properties. The title property is excluded
// since it becomes the document title.
func pageFrontmatter(page *Page) (string, error) {
	metadata := pageMetadata{
		NotionID:   page.ID,
		Created:    page.CreatedTime,
		LastEdited: page.LastEditedTime,
	}

	properties := make(map[string]any)
	for name, prop := range page.Properties {
		if prop.Type == "title" {
			continue
		}
		if value := propertyValue(prop); value != nil {
			properties[name] = value
		}
	}
	if len(properties) > 0 {
		metadata.Properties = properties
	}

	out, err := yaml.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}
