// Seed program: builds a small on-disk catalog and table, inserts a few
// rows under one committed transaction, then scans them back.
// Run: go run ./cmd/seed
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"coredb/config"
	"coredb/engine"
	"coredb/execution"
	"coredb/types"
)

const baseDir = "databases/demo"

func main() {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	catalogFile := filepath.Join(baseDir, "catalog.txt")
	contents := "students (id int pk, age int)\n"
	if err := os.WriteFile(catalogFile, []byte(contents), 0644); err != nil {
		log.Fatalf("write catalog: %v", err)
	}

	env, err := engine.New(config.Config{DataDir: baseDir, BufferPoolCapacity: config.DefaultBufferPoolCapacity}, nil)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	defer env.Close()

	if err := env.LoadSchema(catalogFile); err != nil {
		log.Fatalf("load schema: %v", err)
	}

	tableID, err := env.Catalog.TableIDByName("students")
	if err != nil {
		log.Fatalf("table lookup: %v", err)
	}
	schema, err := env.Catalog.SchemaOf(tableID)
	if err != nil {
		log.Fatalf("schema lookup: %v", err)
	}

	tid := env.Begin()
	rows := [][2]int32{{1, 20}, {2, 21}, {3, 19}}
	for _, r := range rows {
		tup := types.NewTuple(schema)
		if err := tup.SetField(0, types.IntField(r[0])); err != nil {
			log.Fatalf("set field: %v", err)
		}
		if err := tup.SetField(1, types.IntField(r[1])); err != nil {
			log.Fatalf("set field: %v", err)
		}
		if _, err := env.Pool.InsertTuple(tid, tableID, tup); err != nil {
			log.Fatalf("insert: %v", err)
		}
	}
	if err := env.Commit(tid); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("--- SELECT * FROM students ---")
	tid2 := env.Begin()
	scan := execution.NewSeqScan(tid2, tableID, "students", env.Pool, env.Catalog)
	if err := scan.Open(); err != nil {
		log.Fatalf("scan: %v", err)
	}
	for {
		has, err := scan.HasNext()
		if err != nil {
			log.Fatalf("scan: %v", err)
		}
		if !has {
			break
		}
		row, err := scan.Next()
		if err != nil {
			log.Fatalf("scan: %v", err)
		}
		fmt.Print(row)
	}
	scan.Close()
	if err := env.Commit(tid2); err != nil {
		log.Fatalf("commit: %v", err)
	}

	card, err := env.Stats.TableCardinality(tableID)
	if err != nil {
		log.Fatalf("cardinality: %v", err)
	}
	fmt.Printf("\nestimated cardinality upper bound: %d\n", card)
	fmt.Println("Inspect:", baseDir+"/students.dat")
}
