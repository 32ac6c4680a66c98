/*
NAME
  watch.go

DESCRIPTION
  watch.go provides watching of a local variables file so that the pipeline
  configuration can be changed while running.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/utils/logging"
)

// Watch applies the variables file at path to the config now and again on
// every write to the file, until the returned stop function is called. Lines
// are Name=Value pairs using the names in Variables; blank lines and lines
// starting with '#' are ignored.
func Watch(path string, c *Config, log logging.Logger) (func() error, error) {
	err := apply(path, c)
	if err != nil {
		return nil, fmt.Errorf("could not apply variables file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	err = watcher.Add(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("could not watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				log.Info("variables file changed, updating config", "path", path)
				err := apply(path, c)
				if err != nil {
					log.Warning("could not apply variables file", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warning("variables file watcher error", "error", err)
			}
		}
	}()

	return watcher.Close, nil
}

// apply reads the variables file and updates the config with its pairs.
func apply(path string, c *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	err = scanner.Err()
	if err != nil {
		return err
	}

	c.Update(vars)
	return nil
}
