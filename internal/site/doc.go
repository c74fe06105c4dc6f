// Package site renders the catalog into a static website.
//
// Rendering is a pure function of the catalog, the design directory, and
// the image base URL: the same inputs always produce byte-identical output.
// The design directory holds index.html.tmpl, album.html.tmpl,
// photo.html.tmpl (html/template syntax), the 404.html page, and the css/
// and js/ trees copied verbatim. A default design is embedded in the binary.
package site
