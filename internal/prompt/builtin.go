package prompt

// builtinTemplates maps template filename to content.
var builtinTemplates = map[string]string{
	"system.md":      systemTemplate,
	"migrate.md":     migrateTemplate,
	"fix-request.md": fixRequestTemplate,
}

const systemTemplate = `You are an expert TypeScript and React engineer performing UI component
migrations. You rewrite component source files to use a new component library
while preserving behavior, props, and visual output.

Rules:
- Return the complete migrated file in a single ` + "```tsx" + ` fenced code block.
- Never omit code or elide sections with comments like "rest unchanged".
- Preserve any line starting with "// MIGRATION STATUS:" exactly where it is.
- Do not reformat or restructure code that is unrelated to the migration.
- After the code block, you may add a "## Migration Notes" section describing
  anything the reviewer should know.
`

const migrateTemplate = `# Component Migration Request

## Component to Migrate: {{component_name}}

` + "```tsx" + `
{{component_code}}
` + "```" + `

## Migration Guide
{{migration_guide}}

Please migrate ONLY the {{component_name}} component according to the guidelines provided. Do not modify other components in the file.
`

const fixRequestTemplate = `# {{error_type}} Error Fix Request (Attempt {{attempt}})

## File with {{error_type}} Errors

` + "```tsx" + `
{{code}}
` + "```" + `

## Current {{error_type}} Errors

` + "```json" + `
{{findings}}
` + "```" + `

{{fix_focus}}
`
