package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// seedGuides are the bundled first-aid passages the store starts with when
// no knowledge directory is configured.
var seedGuides = []string{
	"Bleeding: wash your hands, clean the wound with clean water, and apply steady pressure with a clean cloth. Elevate the injured area above heart level if possible. Heavy, spurting, or unstoppable bleeding needs urgent medical help.",
	"Burns: cool the burned area under cool running water for at least 10 minutes. Remove rings or watches before swelling starts. Cover loosely with a sterile, non-fluffy dressing. Do not apply ice or ointments; large or deep burns need medical care.",
	"Choking: encourage forceful coughing first. If coughing stops, give 5 back blows between the shoulder blades, then 5 abdominal thrusts, repeating until the object clears. Call emergency services if the airway stays blocked.",
	"Allergic reaction: help the person use their epinephrine auto-injector if they have one and call emergency services. Lay them flat with legs raised unless breathing is difficult.",
	"Sprains: rest the joint, apply a cold pack wrapped in cloth for 15-20 minutes each hour, compress with a snug elastic bandage, and elevate. Seek care if weight-bearing is impossible.",
	"Fractures: immobilize the injured area in the position found and do not realign the limb. Apply wrapped cold packs for swelling and keep the person still until help arrives.",
	"Fainting and dizziness: help the person sit or lie down, loosen tight clothing, and encourage slow deep breaths. Seek medical advice if it is severe, prolonged, or follows a head injury.",
	"Headache: rest in a quiet dim room, stay hydrated, and use a cold compress for short periods. A sudden severe headache, or one with vision or speech changes, needs urgent care.",
	"Poisoning: do not induce vomiting. Identify the substance if safely possible and contact poison control or emergency services immediately.",
	"Nosebleed: sit upright, lean slightly forward, and pinch the soft part of the nose for 10 minutes. Seek care if bleeding lasts beyond 20 minutes or follows an injury.",
}

// Seed loads passages into the store: every .txt/.md file under dir when dir
// is set, otherwise the bundled guides.
func Seed(ctx context.Context, store *MemoryStore, dir string) error {
	contents := seedGuides
	if dir != "" {
		loaded, err := loadDir(dir)
		if err != nil {
			return err
		}
		if len(loaded) > 0 {
			contents = loaded
		}
	}
	return store.AddDocuments(ctx, contents)
}

func loadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var contents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".txt" && ext != ".md" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			contents = append(contents, text)
		}
	}
	return contents, nil
}
