// The config package encapsulates configuration for the linemerge
// commands (linemerge, linemergefs).
//
// Both commands keep their configuration, logs, and stored documents
// within a dedicated base directory. When loading the configuration,
// the first and only argument is the path to the base directory rather
// than the path to the configuration file. The designated directory is
// expected to contain a file called 'config' made of "key value" lines
// that correspond to the fields of the C struct of this package. Lines
// starting with '#' are ignored. Paths such as the log file and the disk
// store directory are derived from the base directory.
package config
