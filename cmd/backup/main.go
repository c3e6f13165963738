package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"stemquest/internal/config"
	"stemquest/internal/database"
	"stemquest/internal/repository"
	"stemquest/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := newBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(backupService, *importInput, *importClear)

	case "stats":
		handleStats(backupService)

	case "clear":
		handleClear(backupService)

	default:
		printUsage()
		os.Exit(1)
	}
}

func newBackupService(db *database.DB) *service.BackupService {
	return service.NewBackupService(db,
		repository.NewProgressRepository(db),
		repository.NewResultRepository(db),
		repository.NewActivityRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewSettingsRepository(db),
		repository.NewContentRepository(db),
	)
}

func handleExport(backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	log.Printf("Exporting data to: %s", outputPath)
	if err := backupService.ExportTo(file); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	// Get file size
	fileInfo, _ := os.Stat(outputPath)
	log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
}

func handleImport(backupService *service.BackupService, inputPath string, clearData bool) {
	file, err := os.Open(inputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer file.Close()

	if clearData {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}

		log.Println("Clearing existing data...")
		if err := backupService.ClearAll(); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
	}

	log.Printf("Importing data from: %s", inputPath)
	if err := backupService.ImportFrom(file); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

func handleStats(backupService *service.BackupService) {
	stats, err := backupService.Stats()
	if err != nil {
		log.Fatalf("Failed to collect stats: %v", err)
	}

	fmt.Printf("Total points:        %d\n", stats.TotalPoints)
	fmt.Printf("Level:               %d\n", stats.Level)
	fmt.Printf("Current streak:      %d\n", stats.CurrentStreak)
	fmt.Printf("Completed quizzes:   %d\n", stats.CompletedQuizzes)
	fmt.Printf("Logged results:      %d\n", stats.LoggedResults)
	fmt.Printf("Logged activities:   %d\n", stats.LoggedActivities)
	fmt.Printf("Earned achievements: %d\n", stats.EarnedAchievements)
	fmt.Printf("Cached entries:      %d\n", stats.CachedEntries)
}

func handleClear(backupService *service.BackupService) {
	fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
	var confirmation string
	fmt.Scanln(&confirmation)
	if confirmation != "yes" {
		log.Println("Clear cancelled")
		return
	}

	if err := backupService.ClearAll(); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	log.Println("All data cleared")
}

func printUsage() {
	fmt.Println("STEM Quest Data Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export data to JSON file")
	fmt.Println("  backup import [options]    Import data from JSON file")
	fmt.Println("  backup stats               Show stored-state summary")
	fmt.Println("  backup clear               Delete all stored data")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Export data")
	fmt.Println("  backup export")
	fmt.Println("  backup export -output mybackup.json")
	fmt.Println()
	fmt.Println("  # Import data (merge with existing data)")
	fmt.Println("  backup import -input backup.json")
	fmt.Println()
	fmt.Println("  # Import data (replace all data)")
	fmt.Println("  backup import -input backup.json -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH    SQLite database path (default: ./stemquest.db)")
	fmt.Println("  DB_URL     PostgreSQL or MySQL connection URL")
}
