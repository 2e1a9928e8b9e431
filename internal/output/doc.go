// Package output owns the discipline around the dist directory.
//
// A build never writes into dist directly. Commands render into a staging
// directory created next to the resolved dist path; on success the staged tree
// is promoted into dist while the Guard's write lock is held. Preview readers
// take the read lock for each file they serve, so they either see the previous
// tree or the new one, never a half-cleaned directory.
//
// Hidden entries (dotfiles) at the top of dist survive a clean: dist may be a
// separate version-controlled checkout or a symlink into one.
package output
