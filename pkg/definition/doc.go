// Package definition loads declarative form definitions from JSON, YAML or
// TOML files. A document maps form ids to a container class and a list of
// field nodes:
//
//	forms:
//	  invoice:
//	    cssClass: container
//	    fields:
//	      - kind: row
//	        children:
//	          - {kind: text, name: customer, validators: [required]}
//	          - {kind: date, name: due, initial: 2024-05-01}
//	      - kind: groupArray
//	        name: lines
//	        children:
//	          - {kind: text, name: description}
//	          - {kind: number, name: qty, validators: ["min:1"]}
//
// Validators are referenced by name. The built-in names are required, email,
// minLength:n, maxLength:n, min:n, max:n and pattern:expr; anything else must
// be registered with WithValidator. Labels and hints are stripped of markup.
package definition
