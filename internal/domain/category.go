package domain

import "strings"

// AllCategories is the pseudo-category listed first by the categories endpoint.
const AllCategories = "All"

// Category groups articles whose tags intersect Tags.
type Category struct {
	Name string
	Tags []string
}

// CategoryTable is an ordered classification table. The first category with
// a matching tag wins; Default applies when none match.
type CategoryTable struct {
	Categories []Category
	Default    string
}

// DefaultCategoryTable returns the site's category table.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		Categories: []Category{
			{
				Name: "AI & Agents",
				Tags: []string{"AI", "LLM Tools", "CLI Agents", "MCP", "Workflow Automation", "Prompt Engineering"},
			},
			{
				Name: "Cloud & DevOps",
				Tags: []string{"AWS", "Terraform", "Infrastructure as Code", "DevOps", "Serverless", "Azure", "GCP"},
			},
			{
				Name: "Architecture",
				Tags: []string{"Software Architecture", "System Design", "Microservices", "Distributed Systems"},
			},
			{
				Name: "Engineering",
				Tags: []string{"Software Engineering", "Best Practices", "Low-code", "Database Optimization"},
			},
		},
		Default: "Engineering",
	}
}

// Classify maps tags to a category name. It is total: with no match, or no
// tags at all, the default is returned.
func (t CategoryTable) Classify(tags []string) string {
	for _, c := range t.Categories {
		for _, want := range c.Tags {
			for _, have := range tags {
				if strings.EqualFold(want, have) {
					return c.Name
				}
			}
		}
	}

	return t.Default
}

// Names returns category names in table order.
func (t CategoryTable) Names() []string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}

	return names
}

// Has reports whether name is a category in the table, ignoring case.
func (t CategoryTable) Has(name string) bool {
	for _, c := range t.Categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}

	return strings.EqualFold(t.Default, name)
}
