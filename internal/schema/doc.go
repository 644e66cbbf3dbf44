// Package schema loads database definitions: the database name and version,
// its object stores, their indexes and optional seed data.
//
// Definitions are written in CUE or YAML. A CUE file declares a top-level
// `database` field:
//
//	database: {
//	    name:    "app"
//	    version: 1
//	    stores: [{
//	        name:          "users"
//	        keyPath:       "id"
//	        autoIncrement: true
//	        indexes: [{name: "by_email", keyPath: "email", unique: true}]
//	        data: [{name: "Joe", email: "joe@example.com"}]
//	    }]
//	}
//
// The YAML form is the same document without the `database` wrapper.
package schema
