// Package planner derives the per-run backup plan from a resolved Config.
//
// The plan is computed fresh for every run and touches no filesystem state:
// it names the destination subtree each active category owns and the entries
// its copy policy will process. Whether a source exists, or is a file or a
// directory, is decided later by the engine at copy time.
//
// Naming rules live in naming.go as small pure functions so they can be
// audited and tested in isolation:
//   - a deployment is filed under its parent directory's base name
//   - an environment is filed under its base name, or <project>/<component>
//     when its base name is a configured component folder
//   - a home entry keeps its base name
package planner
