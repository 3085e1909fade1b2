// Package caret imports CARET architecture descriptions into the rosviz
// graph model.
//
// CARET (a ROS 2 performance-analysis framework) exports an architecture
// YAML describing every node with its published and subscribed topics,
// executors with their callback group assignments, and named end-to-end
// paths. [Load] converts the pub/sub relations into a directed multigraph:
// for every topic, each publisher gets one edge to each subscriber, labeled
// with the topic name.
//
// Beyond the graph structure the importer attaches callback group
// annotations (which executor runs each group, with a stable highlight color
// for executors shared across groups) and exposes the named paths via
// [LoadPaths] for downstream path highlighting.
package caret
