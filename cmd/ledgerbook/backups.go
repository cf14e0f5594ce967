package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/pkg/errors"
)

// backupsCmd holds the flags for the 'backups' subcommand.
type backupsCmd struct{}

func (*backupsCmd) Name() string     { return "backups" }
func (*backupsCmd) Synopsis() string { return "list server backups" }
func (*backupsCmd) Usage() string {
	return `ledgerbook backups
`
}

func (*backupsCmd) SetFlags(*flag.FlagSet) {}

func (*backupsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		backups, err := client.Backups.List(ctx)
		if err != nil {
			return err
		}
		t := newTable("ID", "Created", "File", "Size", "Description").right(3)
		for _, b := range backups {
			t.add(
				fmt.Sprint(b.ID),
				b.CreatedAt.Local().Format("2006-01-02 15:04"),
				b.Filename,
				humanSize(b.SizeBytes),
				b.Description,
			)
		}
		printMarkdown(t.String())
		return nil
	})
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// waitJob waits on job and reports how it ended
func waitJob(ctx context.Context, job ledgerbook.BackupJob, timeout time.Duration) error {
	fmt.Fprintf(os.Stderr, "Waiting for job %s...\n", job.ID())
	if err := job.Wait(ctx, timeout); err != nil {
		return err
	}
	m := job.GetMetrics()
	if m.BackupID != nil {
		fmt.Printf("Job %s %s in %s, backup %d\n", job.ID(), job.Status(), m.Duration.Round(time.Second), *m.BackupID)
	} else {
		fmt.Printf("Job %s %s in %s\n", job.ID(), job.Status(), m.Duration.Round(time.Second))
	}
	return nil
}

// backupCreateCmd holds the flags for the 'backup-create' subcommand.
type backupCreateCmd struct {
	description string
	wait        bool
	timeout     time.Duration
}

func (*backupCreateCmd) Name() string     { return "backup-create" }
func (*backupCreateCmd) Synopsis() string { return "start a server backup" }
func (*backupCreateCmd) Usage() string {
	return `ledgerbook backup-create [-d <description>] [-wait] [-timeout <duration>]
`
}

func (c *backupCreateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "d", "", "Description")
	f.BoolVar(&c.wait, "wait", false, "Wait for the backup to finish")
	f.DurationVar(&c.timeout, "timeout", 10*time.Minute, "How long -wait waits")
}

func (c *backupCreateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withClient(func(client *ledgerbook.Client) error {
		job, err := client.Backups.Create(ctx, c.description)
		if err != nil {
			return err
		}
		if !c.wait {
			fmt.Printf("Backup job %s %s\n", job.ID(), job.Status())
			return nil
		}
		return waitJob(ctx, job, c.timeout)
	})
}

// backupRestoreCmd holds the flags for the 'backup-restore' subcommand.
type backupRestoreCmd struct {
	yes     bool
	wait    bool
	timeout time.Duration
}

func (*backupRestoreCmd) Name() string     { return "backup-restore" }
func (*backupRestoreCmd) Synopsis() string { return "restore a server backup" }
func (*backupRestoreCmd) Usage() string {
	return `ledgerbook backup-restore -yes [-wait] <backup-id>

  Replaces all current data with the backup. Requires -yes.
`
}

func (c *backupRestoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm that current data will be replaced")
	f.BoolVar(&c.wait, "wait", true, "Wait for the restore to finish")
	f.DurationVar(&c.timeout, "timeout", 10*time.Minute, "How long -wait waits")
}

func (c *backupRestoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := strconv.Atoi(f.Arg(0))
	if f.NArg() != 1 || err != nil {
		fmt.Fprintln(os.Stderr, "Error: expected one backup id")
		return subcommands.ExitUsageError
	}
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: restoring replaces all current data, pass -yes to confirm")
		return subcommands.ExitUsageError
	}

	return withClient(func(client *ledgerbook.Client) error {
		job, err := client.Backups.Restore(ctx, id)
		if err != nil {
			return err
		}
		if !c.wait {
			fmt.Printf("Restore job %s %s\n", job.ID(), job.Status())
			return nil
		}
		return waitJob(ctx, job, c.timeout)
	})
}

// backupDownloadCmd holds the flags for the 'backup-download' subcommand.
type backupDownloadCmd struct {
	dir string
}

func (*backupDownloadCmd) Name() string     { return "backup-download" }
func (*backupDownloadCmd) Synopsis() string { return "download a backup archive" }
func (*backupDownloadCmd) Usage() string {
	return `ledgerbook backup-download [-o <dir>] <backup-id>
`
}

func (c *backupDownloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", ".", "Directory to write the archive to")
}

func (c *backupDownloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := strconv.Atoi(f.Arg(0))
	if f.NArg() != 1 || err != nil {
		fmt.Fprintln(os.Stderr, "Error: expected one backup id")
		return subcommands.ExitUsageError
	}

	return withClient(func(client *ledgerbook.Client) error {
		tmp, err := os.CreateTemp(c.dir, ".backup-*")
		if err != nil {
			return errors.Wrap(err, "failed to create temporary file")
		}
		defer os.Remove(tmp.Name())

		name, err := client.Backups.Download(ctx, id, tmp)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		dest := filepath.Join(c.dir, filepath.Base(name))
		if err := os.Rename(tmp.Name(), dest); err != nil {
			return errors.Wrap(err, "failed to save backup")
		}
		fmt.Printf("Saved %s\n", dest)
		return nil
	})
}

// backupUploadCmd holds the flags for the 'backup-upload' subcommand.
type backupUploadCmd struct{}

func (*backupUploadCmd) Name() string     { return "backup-upload" }
func (*backupUploadCmd) Synopsis() string { return "upload a backup archive" }
func (*backupUploadCmd) Usage() string {
	return `ledgerbook backup-upload <file.zip>
`
}

func (*backupUploadCmd) SetFlags(*flag.FlagSet) {}

func (*backupUploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one file")
		return subcommands.ExitUsageError
	}
	file := f.Arg(0)
	if !strings.HasSuffix(strings.ToLower(file), ".zip") {
		fmt.Fprintf(os.Stderr, "Error: %s is not a .zip archive\n", file)
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", file, err)
		return subcommands.ExitFailure
	}

	return withClient(func(client *ledgerbook.Client) error {
		backup, err := client.Backups.Upload(ctx, filepath.Base(file), data)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded backup %d (%s)\n", backup.ID, humanSize(backup.SizeBytes))
		return nil
	})
}
