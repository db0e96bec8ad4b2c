// Package git provides Git repository integration for compiler sources.
//
// This package enables GitOps workflows by cloning source repositories,
// polling for new commits, and notifying when source files change so they
// can be recompiled. It supports HTTPS and SSH authentication and
// branch-based environments.
//
// # Basic Usage
//
//	cfg := &config.GitSourceConfig{
//		Repository: "https://github.com/company/programs.git",
//		Branch:     "main",
//		Path:       "src/",
//	}
//
//	repo, err := git.NewRepository(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := repo.Clone(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
//	files, err := repo.ListSourceFiles()
//
// # Change Detection
//
// The watcher polls the repository and notifies when source files change:
//
//	watcher := git.NewPollWatcher(repo, 30*time.Second, 10*time.Second, onUpdate)
//	watcher.Start(context.Background())
//
// Commits that touch only non-source files are skipped without a
// notification.
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - Basic (HTTPS): Username and password
//   - SSH key-based: Public key authentication
//   - None: Public repositories
//
// # Branch-Based Environments
//
// Use different branches for different environments:
//   - dev branch → Development environment
//   - staging branch → Staging environment
//   - main branch → Production environment
package git
