package main

// RichText is one formatted segment of Notion rich text.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
	Text        *TextValue  `json:"text,omitempty"`
}

// TextValue holds the raw text content of a rich text segment.
type TextValue struct {
	Content string `json:"content"`
}

// Annotations are the formatting flags on a rich text segment.
type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

// Block is one node of a page's content tree. Exactly one payload field is
// set, matching Type; unknown types decode with all payloads nil and are
// rendered as an unsupported marker.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextValue   `json:"paragraph,omitempty"`
	Heading1         *RichTextValue   `json:"heading_1,omitempty"`
	Heading2         *RichTextValue   `json:"heading_2,omitempty"`
	Heading3         *RichTextValue   `json:"heading_3,omitempty"`
	BulletedListItem *RichTextValue   `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextValue   `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoValue       `json:"to_do,omitempty"`
	Toggle           *RichTextValue   `json:"toggle,omitempty"`
	Quote            *RichTextValue   `json:"quote,omitempty"`
	Callout          *CalloutValue    `json:"callout,omitempty"`
	Code             *CodeValue       `json:"code,omitempty"`
	Image            *FileValue       `json:"image,omitempty"`
	File             *FileValue       `json:"file,omitempty"`
	PDF              *FileValue       `json:"pdf,omitempty"`
	Audio            *FileValue       `json:"audio,omitempty"`
	Video            *FileValue       `json:"video,omitempty"`
	Embed            *LinkValue       `json:"embed,omitempty"`
	Bookmark         *BookmarkValue   `json:"bookmark,omitempty"`
	LinkPreview      *LinkValue       `json:"link_preview,omitempty"`
	TableRow         *TableRowValue   `json:"table_row,omitempty"`
	ChildPage        *ChildTitleValue `json:"child_page,omitempty"`
	ChildDatabase    *ChildTitleValue `json:"child_database,omitempty"`
	Equation         *EquationValue   `json:"equation,omitempty"`

	// Children is populated by the tree fetcher. Once a fetch completes,
	// HasChildren implies Children is non-nil (empty is valid, absent is not).
	Children []Block `json:"children,omitempty"`
}

// RichTextValue is the payload shared by plain text-carrying block types.
type RichTextValue struct {
	RichText []RichText `json:"rich_text"`
}

// ToDoValue is the payload of a checkbox item.
type ToDoValue struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// CalloutValue is the payload of a callout block.
type CalloutValue struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// Icon is a page or callout icon.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// CodeValue is the payload of a source-code block.
type CodeValue struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
}

// FileValue is the payload of a media block. Hosted files carry File,
// externally-owned ones carry External; a block may carry neither.
type FileValue struct {
	Caption  []RichText    `json:"caption,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
}

// HostedFile is a file hosted by Notion behind a temporary URL.
type HostedFile struct {
	URL string `json:"url"`
}

// ExternalFile is a file referenced by an externally-owned URL.
type ExternalFile struct {
	URL string `json:"url"`
}

// LinkValue is the payload of embed and link_preview blocks.
type LinkValue struct {
	URL string `json:"url"`
}

// BookmarkValue is the payload of a bookmark block.
type BookmarkValue struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// TableRowValue is the payload of a table_row block.
type TableRowValue struct {
	Cells [][]RichText `json:"cells"`
}

// ChildTitleValue is the payload of child_page and child_database blocks.
type ChildTitleValue struct {
	Title string `json:"title"`
}

// EquationValue is the payload of an equation block.
type EquationValue struct {
	Expression string `json:"expression"`
}

// ParentRef identifies the parent of a page or database.
type ParentRef struct {
	Type       string `json:"type"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// Page is a document-like content item with properties and a block tree.
type Page struct {
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	URL            string              `json:"url,omitempty"`
	Parent         ParentRef           `json:"parent"`
	Properties     map[string]Property `json:"properties,omitempty"`
}

// ParentPageID returns the page's parent page ID, or "" for root pages and
// pages parented by anything other than a page.
func (p *Page) ParentPageID() string {
	if p.Parent.Type == "page_id" {
		return p.Parent.PageID
	}
	return ""
}

// Property is one page property value. Type selects which field is set.
type Property struct {
	Type           string         `json:"type"`
	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Status         *SelectOption  `json:"status,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	Checkbox       *bool          `json:"checkbox,omitempty"`
	URL            *string        `json:"url,omitempty"`
	Email          *string        `json:"email,omitempty"`
	PhoneNumber    *string        `json:"phone_number,omitempty"`
	People         []UserRef      `json:"people,omitempty"`
	Files          []PropertyFile `json:"files,omitempty"`
	Relation       []RelationRef  `json:"relation,omitempty"`
	Formula        *ComputedValue `json:"formula,omitempty"`
	Rollup         *ComputedValue `json:"rollup,omitempty"`
	CreatedTime    string         `json:"created_time,omitempty"`
	CreatedBy      *UserRef       `json:"created_by,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
	LastEditedBy   *UserRef       `json:"last_edited_by,omitempty"`
}

// SelectOption is a single select or status value.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue is a date property value.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// UserRef identifies a Notion user.
type UserRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// PropertyFile is one file reference in a files property.
type PropertyFile struct {
	Name string `json:"name,omitempty"`
}

// RelationRef points at a related page.
type RelationRef struct {
	ID string `json:"id"`
}

// ComputedValue is the result of a formula or rollup property. Type selects
// which field carries the value.
type ComputedValue struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// SchemaProperty describes one column of a database schema.
type SchemaProperty struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// DataSourceRef points at a data source backing a database.
type DataSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Database is a schema plus an unordered collection of rows.
type Database struct {
	ID          string                    `json:"id"`
	Title       []RichText                `json:"title,omitempty"`
	Parent      ParentRef                 `json:"parent"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	DataSources []DataSourceRef           `json:"data_sources,omitempty"`
}

// PageData is a fully fetched page: its properties plus the complete block tree.
type PageData struct {
	Page   Page    `json:"page"`
	Blocks []Block `json:"blocks"`
}

// DatabaseData is a fully fetched database or data source: schema plus rows.
type DatabaseData struct {
	Database Database `json:"database"`
	Rows     []Page   `json:"rows"`
}

// HarvestError is one structured per-item failure record. Failures are
// aggregated into the manifest and never abort the run.
type HarvestError struct {
	Category string `json:"type"`
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	BlockID  string `json:"block_id,omitempty"`
	Message  string `json:"error"`
}

// BackupStats summarizes the outcome of one workspace backup.
type BackupStats struct {
	Pages      int
	Databases  int
	Files      int
	TotalBytes int64
	Errors     []HarvestError
	Status     string
	BackupPath string
	Duration   float64
}
