// Package confloader loads tachikv configuration.
//
// It uses koanf to merge sources with priority Env > File > Default;
// CLI flags are applied on top by the caller via LoadMap. A
// fsnotify-backed watcher lets the server react to config file edits
// at runtime, so log level changes take effect without a restart.
package confloader
