// Package harness runs end-to-end sync scenarios against a real store and a
// content repository written to a temporary directory.
//
// Every scenario starts from the sample track (see testutil.SampleTrackFixture)
// and describes a chain of commits, each derived from the previous one, plus
// the steps to run against them.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	anchor: hello-world        # optional
//	workers: 2                 # optional
//	commits:
//	  - sha: c1                # the sample track as is
//	  - sha: c2
//	    exercises:
//	      - slug: leap
//	        name: "Leap Year"
//	        status: beta
//	    order: [hello-world, leap, two-fer, raindrops]
//	    files:
//	      exercises/practice/leap/leap_test.rb: "# changed\n"
//	    delete: [exercises/practice/leap/.meta/example.rb]
//	    patch: |               # optional stored diff from the previous commit
//	      --- a/...
//	steps:
//	  - action: seed           # seed | sync | force | plan
//	    head: c1               # defaults to the previous step's head
//	  - action: sync
//	    head: c2
//	    expect:
//	      reconciled: 1
//	      outcomes: { leap: reconciled, two-fer: checkpoint_only }
//	      details: { leap: "track_config:position" }
//	assertions:
//	  - type: exercise
//	    exercise: leap
//	    expect: { title: "Leap Year", position: 4, site_update: true }
//	  - type: sync_run
//	    run: run-1
//	    expect: { reconciled: 6, failed: 0 }
//
// # Determinism
//
// Run IDs are run-1, run-2, ... in step order and timestamps come from a
// testutil.DeterministicClock, so the text output of a scenario is stable
// and can be compared against a golden file.
package harness
