package assets

// AssetLoader loads stylesheets and page templates by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)

	// ListTemplates returns the template names this loader can serve, sorted.
	ListTemplates() ([]string, error)
}

// LayoutTemplateName is the template every page is rendered inside.
const LayoutTemplateName = "base"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// Page template names used by the site.
const (
	TemplateHome      = "home"
	TemplateAbout     = "about"
	TemplatePostsList = "posts_list"
	TemplatePost      = "post"
	TemplateResume    = "resume"
	TemplateError     = "error"
)

// TemplateSet pairs the layout with one page template.
type TemplateSet struct {
	Name   string // Page template name
	Layout string // base.html content
	Page   string // {Name}.html content
}

// loadTemplateSet loads the layout and the named page from loader.
func loadTemplateSet(loader AssetLoader, name string) (*TemplateSet, error) {
	page, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, err
	}
	layout, err := loader.LoadTemplate(LayoutTemplateName)
	if err != nil {
		return nil, wrapLayoutError(err)
	}
	return &TemplateSet{Name: name, Layout: layout, Page: page}, nil
}
