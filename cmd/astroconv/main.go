// Package main provides a command-line tool to convert Astroneer saves between the
// Microsoft Store and Steam versions of the game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/astrotools/astroSaveConverter/pkg/backup"
	"github.com/astrotools/astroSaveConverter/pkg/config"
	"github.com/astrotools/astroSaveConverter/pkg/container"
	"github.com/astrotools/astroSaveConverter/pkg/convert"
	"github.com/astrotools/astroSaveConverter/pkg/save"
	"github.com/astrotools/astroSaveConverter/pkg/savefolder"
)

const appVersion = "2.0"

var (
	mode          string
	configPath    string
	savesDir      string
	containerName string
	selection     string
	renames       string
	outputDir     string
	backupDir     string
	useSnapshot   bool
	archivePath   string
	force         bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: list, win2steam, steam2win, backup, restore")
	flag.StringVar(&configPath, "config", config.DefaultFileName, "Path of the INI configuration file")
	flag.StringVar(&savesDir, "saves", "", "Folder to read saves from (discovered when empty)")
	flag.StringVar(&containerName, "container", "", "Container file to use when the folder holds several")
	flag.StringVar(&selection, "select", "0", "Saves to convert, e.g. \"1,2,4\" (0 for all)")
	flag.StringVar(&renames, "rename", "", "New base names, e.g. \"1=MYBASE,3=MOON\"")
	flag.StringVar(&outputDir, "output", "", "Folder to write converted saves to (discovered when empty)")
	flag.StringVar(&backupDir, "backup", "", "Folder receiving a backup of the target saves before writing")
	flag.BoolVar(&useSnapshot, "snapshot", false, "Write backups as a single compressed file instead of a copy")
	flag.StringVar(&archivePath, "archive", "", "Snapshot file to restore (restore mode)")
	flag.BoolVar(&force, "force", false, "Overwrite existing Steam saves")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.FromEnv(os.Getenv)
	if backupDir == "" {
		backupDir = cfg.Paths.BackupDir
	}

	logger, closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Printf("starting astroconv %s, mode %s", appVersion, mode)

	switch mode {
	case "list":
		return runList(cfg, logger)
	case "win2steam":
		return runToSteam(cfg, logger)
	case "steam2win":
		return runToMicrosoft(cfg, logger)
	case "backup":
		return runBackup(cfg, logger)
	case "restore":
		return runRestore()
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	switch mode {
	case "":
		return fmt.Errorf("mode is required")
	case "list", "win2steam", "steam2win", "backup":
	case "restore":
		if archivePath == "" || outputDir == "" {
			return fmt.Errorf("restore mode requires -archive and -output")
		}
	default:
		return fmt.Errorf("mode must be one of list, win2steam, steam2win, backup, restore")
	}
	return nil
}

// microsoftFolder returns the Microsoft save folder given on the command line, in the
// configuration or, failing both, the single one discovered.
func microsoftFolder(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Paths.MicrosoftSaves != "" {
		return cfg.Paths.MicrosoftSaves, nil
	}

	folders, err := savefolder.FindMicrosoftFolders(cfg.Paths.LocalAppData)
	if err != nil {
		return "", err
	}
	if len(folders) > 1 {
		fmt.Printf("%d Microsoft save folders found, pass one with -saves or -output:\n", len(folders))
		for i, folder := range folders {
			fmt.Printf("\t%d) %s\n", i+1, folder)
			details, _ := savefolder.Details(folder)
			for _, d := range details {
				fmt.Printf("\t\t%s - %s\n", d.Name, d.Date)
			}
		}
		return "", fmt.Errorf("several Microsoft save folders found")
	}
	return folders[0], nil
}

func steamFolder(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Paths.SteamSaves != "" {
		return cfg.Paths.SteamSaves, nil
	}
	return savefolder.SteamFolder(cfg.Paths.LocalAppData)
}

func pickContainer(dir string) (string, error) {
	if containerName != "" {
		return filepath.Join(dir, containerName), nil
	}

	names, err := container.List(dir)
	if err != nil {
		return "", err
	}
	if len(names) > 1 {
		fmt.Printf("Containers found: %v, using %s (choose with -container)\n", names, names[0])
	}
	return filepath.Join(dir, names[0]), nil
}

func printSaves(label string, saves []*save.Save) {
	fmt.Printf("%s saves:\n", label)
	for i, s := range saves {
		fmt.Printf("\t%d) %s (%d chunks)\n", i+1, s.Name, len(s.Chunks))
	}
}

// selectSaves applies -select and -rename to saves.
func selectSaves(saves []*save.Save) ([]int, error) {
	indexes, err := convert.ParseSelection(selection, len(saves))
	if err != nil {
		return nil, err
	}

	names, err := convert.ParseRenames(renames)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if i >= len(saves) {
			return nil, fmt.Errorf("rename: no save number %d", i+1)
		}
		old := saves[i].Name
		if err := convert.RenameSave(saves[i], name); err != nil {
			return nil, err
		}
		fmt.Printf("Renamed %s to %s\n", old, saves[i].Name)
	}
	return indexes, nil
}

func runList(cfg *config.Config, logger *log.Logger) error {
	if dir, err := microsoftFolder(cfg, savesDir); err == nil {
		path, err := pickContainer(dir)
		if err != nil {
			return err
		}
		x, err := convert.LoadContainer(path)
		if err != nil {
			return err
		}
		logger.Printf("container %s: %d chunks", path, x.ChunkCount())
		printSaves("Microsoft", convert.ListSaves(x))
	} else {
		fmt.Printf("Microsoft: %v\n", err)
	}

	if dir, err := steamFolder(cfg, ""); err == nil {
		names, err := save.ListSteamFiles(dir)
		if err != nil {
			fmt.Printf("Steam: %v\n", err)
			return nil
		}
		printSaves("Steam", save.FromSteamFiles(names))
	} else {
		fmt.Printf("Steam: %v\n", err)
	}
	return nil
}

func runToSteam(cfg *config.Config, logger *log.Logger) error {
	srcDir, err := microsoftFolder(cfg, savesDir)
	if err != nil {
		return fmt.Errorf("find Microsoft saves: %w", err)
	}
	dstDir, err := steamFolder(cfg, outputDir)
	if err != nil {
		return fmt.Errorf("find Steam saves: %w", err)
	}

	path, err := pickContainer(srcDir)
	if err != nil {
		return err
	}
	fmt.Println("Loading container...")
	x, err := convert.LoadContainer(path)
	if err != nil {
		return err
	}
	fmt.Printf("Container loaded: %d chunks\n", x.ChunkCount())

	saves := convert.ListSaves(x)
	printSaves("Microsoft", saves)

	indexes, err := selectSaves(saves)
	if err != nil {
		return err
	}

	if err := makeBackup([]string{dstDir}, "SteamAstroSaveBackup", logger); err != nil {
		return err
	}

	conv := convert.NewConverter(convert.WithLogger(logger), convert.WithOverwrite(force))
	for _, i := range indexes {
		target, err := conv.ExportToSteam(saves[i], srcDir, dstDir)
		if err != nil {
			return err
		}
		fmt.Printf("Save %s exported to %s\n", saves[i].Name, target)
	}

	fmt.Println("Conversion complete.")
	return nil
}

func runToMicrosoft(cfg *config.Config, logger *log.Logger) error {
	srcDir, err := steamFolder(cfg, savesDir)
	if err != nil {
		return fmt.Errorf("find Steam saves: %w", err)
	}
	dstDir, err := microsoftFolder(cfg, outputDir)
	if err != nil {
		return fmt.Errorf("find Microsoft saves: %w", err)
	}

	names, err := save.ListSteamFiles(srcDir)
	if err != nil {
		return err
	}
	saves := save.FromSteamFiles(names)
	printSaves("Steam", saves)

	indexes, err := selectSaves(saves)
	if err != nil {
		return err
	}

	fmt.Println("Astroneer must be closed for more than 20 seconds before its saves are modified.")
	if err := makeBackup([]string{dstDir}, "MicrosoftAstroneerSavesBackup", logger); err != nil {
		return err
	}

	conv := convert.NewConverter(convert.WithLogger(logger))
	for _, i := range indexes {
		if err := conv.ExportToXbox(saves[i], filepath.Join(srcDir, names[i]), dstDir); err != nil {
			return err
		}
		fmt.Printf("Save %s exported in %d chunks\n", saves[i].Name, len(saves[i].Chunks))
	}

	fmt.Println("Conversion complete.")
	return nil
}

func runBackup(cfg *config.Config, logger *log.Logger) error {
	if backupDir == "" {
		return fmt.Errorf("backup mode requires -backup or paths.backup_dir")
	}

	var folders []string
	if savesDir != "" {
		folders = []string{savesDir}
	} else {
		found, err := savefolder.FindMicrosoftFolders(cfg.Paths.LocalAppData)
		if err != nil {
			return err
		}
		folders = found
	}
	return makeBackup(folders, "MicrosoftAstroneerSavesBackup", logger)
}

// makeBackup saves folders below backupDir. It does nothing when no backup folder is set.
func makeBackup(folders []string, prefix string, logger *log.Logger) error {
	if backupDir == "" {
		return nil
	}

	target := filepath.Join(backupDir, backup.FolderName(prefix, time.Now()))
	if !useSnapshot {
		paths, err := backup.CopyDirs(folders, target)
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		logger.Printf("backup copies: %v", paths)
		fmt.Printf("Saves backed up to %s\n", target)
		return nil
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	for i, folder := range folders {
		path := filepath.Join(target, fmt.Sprintf("Backup_%d.asbk", i+1))
		if err := backup.SnapshotFile(folder, path); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		logger.Printf("snapshot of %s written to %s", folder, path)
	}
	fmt.Printf("Saves backed up to %s\n", target)
	return nil
}

func runRestore() error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := backup.RestoreFile(archivePath, outputDir); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	fmt.Printf("Snapshot restored to %s\n", outputDir)
	return nil
}
