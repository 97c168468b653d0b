// Package document provides the persisted form of a diagram.
//
// A [Document] is what is written to disk, stored in MongoDB and exchanged
// over the HTTP API. It round-trips every field the engine depends on
// (relationship path, bounds and isManuallyLayouted) without loss, so a
// diagram reloaded from a document recalculates exactly like the original.
//
// # Format
//
//	{
//	  "bounds": {"x": 0, "y": 0, "width": 800, "height": 600},
//	  "ownedElements": ["A", "B"],
//	  "ownedRelationships": ["R"],
//	  "elements": {
//	    "A": {"id": "A", "type": "Class", "bounds": {"x": 0, "y": 0, "width": 50, "height": 50}},
//	    "B": {"id": "B", "type": "Class", "bounds": {"x": 200, "y": 0, "width": 50, "height": 50}}
//	  },
//	  "relationships": {
//	    "R": {
//	      "id": "R", "type": "ClassAssociation",
//	      "source": {"element": "A", "direction": "Down"},
//	      "target": {"element": "B", "direction": "Up"},
//	      "path": [{"x": 25, "y": 50}, {"x": 225, "y": 0}],
//	      "bounds": {"x": 25, "y": 0, "width": 200, "height": 50},
//	      "isManuallyLayouted": false
//	    }
//	  }
//	}
//
// Common operations:
//
//	m, _ := document.ReadFile("diagram.json")    // File → Model
//	document.WriteFile(m, "out.json")            // Model → File
//	data, _ := document.Marshal(m)               // Model → []byte
//	doc, _ := document.Unmarshal(data)           // []byte → Document
//
// Loading validates the model: ownership cycles, unknown owners and invalid
// bounds are reported as INVALID_DOCUMENT errors.
package document
