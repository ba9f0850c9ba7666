// Package config holds the extraction options shared by the CLI and the MCP server.
//
// Options can be built in code with Default, loaded from a JSON file with
// Load, or both: fields omitted from the file keep their default values.
//
//	{
//	    "simplify_polygons": true,
//	    "grid_resolution": 2.0
//	}
package config
