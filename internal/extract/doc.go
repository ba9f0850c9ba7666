// Package extract converts label masks into per-label WKT polygon records.
//
// For every distinct non-zero label of a mask, in ascending order:
//
//  1. Isolate the label's pixels (imaging.LabelArray.Isolate)
//  2. Trace the pixel-edge boundary (detection.TraceMask)
//  3. Normalize: optional simplification, percentage rescale, validity
//     repair and flattening (package geometry)
//  4. Serialize each polygon as WKT (geometry.PolygonWKT)
//
// The records are packaged with the image path and dimensions into a
// Document, ready for output.WriteJSON:
//
//	{
//	    "image_path": "masks/0001.png",
//	    "width": 4,
//	    "height": 4,
//	    "segmentations": [
//	        {"label": 1, "polygons": ["POLYGON((75 25,75 75,25 75,25 25,75 25))"]}
//	    ]
//	}
//
// Runner applies the pipeline to a batch of files, logging and counting
// per-image failures without stopping the batch.
package extract
