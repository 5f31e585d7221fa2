// Package fonts centralizes the typefaces figure output uses.
//
// Charts render with the same sans stack matplotlib ships, so SVG, PNG,
// and PDF output sit next to the paper's other graphics without bundling
// font files. Diagrams name a single face because graphviz resolves
// fonts itself.
package fonts

// Family is the CSS font-family stack for SVG chart text.
const Family = `'DejaVu Sans', 'Helvetica Neue', Arial, sans-serif`

// Diagram is the fontname passed to graphviz for architecture diagrams.
const Diagram = "Helvetica"
